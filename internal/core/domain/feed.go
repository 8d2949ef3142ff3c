package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// --- ERREURS DU DOMAINE ---
// Une sentinelle par sous-système défaillant, pour que l'adapter REST
// puisse mapper proprement (400 vs 500) via errors.Is.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidCursor = errors.New("invalid continuation cursor")
	ErrObjectStore   = errors.New("object store failure")
	ErrPersistence   = errors.New("persistence failure")
	ErrNotification  = errors.New("notification failure")
)

// --- ENTITÉ ---

// Feed est l'entité centrale : une référence vers un média déjà commité
// dans l'object store, plus ses métadonnées. Immutable après création
// (aucune opération d'update ou de delete n'est exposée).
type Feed struct {
	ID          string
	UserID      string // sert aussi de clé de partition en base
	Description string
	FeedUrl     string
	UploadDate  time.Time
}

// --- FACTORY (CONSTRUCTEUR) ---

// NewFeed crée une instance valide avec ID généré et timestamp serveur.
// L'identité est générée ICI, pas en DB. UploadDate toujours en UTC :
// c'est la clé de tri primaire côté lecture.
func NewFeed(userID, description, feedUrl string) *Feed {
	return &Feed{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: description,
		FeedUrl:     feedUrl,
		UploadDate:  time.Now().UTC(),
	}
}

// FeedCursor est la position keyset d'une pagination en cours.
// (UploadDate, ID) forme un ordre total : deux feeds uploadés à la même
// nanoseconde ne peuvent pas faire sauter ou dupliquer une ligne entre
// deux pages.
type FeedCursor struct {
	UploadDate time.Time
	ID         string
}

// IsZero indique une première page (pas de curseur fourni).
func (c FeedCursor) IsZero() bool {
	return c.UploadDate.IsZero() && c.ID == ""
}
