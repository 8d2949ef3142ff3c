package domain

import (
	"time"

	"github.com/google/uuid"
)

// User est volontairement minimal : l'identité est générée côté serveur
// (username aléatoire + avatar CDN), il n'y a ni credentials ni profil.
// Aucune contrainte d'intégrité ne lie Feed.UserID à cette table.
type User struct {
	ID            string
	Username      string
	ProfilePicUrl string
	CreatedAt     time.Time
}

// NewUser crée une instance valide avec ID généré et timestamp UTC.
func NewUser(username, profilePicUrl string) *User {
	return &User{
		ID:            uuid.NewString(),
		Username:      username,
		ProfilePicUrl: profilePicUrl,
		CreatedAt:     time.Now().UTC(),
	}
}
