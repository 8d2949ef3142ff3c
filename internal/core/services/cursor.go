package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
)

// Le token de continuation est opaque pour le client : base64url d'un
// couple (date, id) en JSON. Le client le renvoie tel quel ; le serveur
// est le seul à connaître sa structure.
type cursorPayload struct {
	UploadDate string `json:"t"`
	ID         string `json:"id"`
}

// encodeCursor sérialise la position du dernier feed renvoyé.
// RFC3339Nano pour ne pas perdre de précision au round-trip : une date
// tronquée ferait réapparaître des lignes déjà vues.
func encodeCursor(last *domain.Feed) string {
	payload := cursorPayload{
		UploadDate: last.UploadDate.Format(time.RFC3339Nano),
		ID:         last.ID,
	}
	data, _ := json.Marshal(payload)
	return base64.RawURLEncoding.EncodeToString(data)
}

// decodeCursor reconstruit la position keyset. Un token corrompu est une
// erreur de validation (le client l'a altéré), pas une erreur serveur.
func decodeCursor(token string) (domain.FeedCursor, error) {
	var zero domain.FeedCursor

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	var payload cursorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	uploadDate, err := time.Parse(time.RFC3339Nano, payload.UploadDate)
	if err != nil {
		return zero, fmt.Errorf("%w: bad timestamp: %v", domain.ErrInvalidCursor, err)
	}
	if payload.ID == "" {
		return zero, fmt.Errorf("%w: empty id", domain.ErrInvalidCursor)
	}

	return domain.FeedCursor{UploadDate: uploadDate, ID: payload.ID}, nil
}
