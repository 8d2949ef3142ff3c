package ports

import (
	"context"
	"io"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
)

// --- DRIVING (Ce que le service expose) ---

// UploadFeedCmd porte les champs du formulaire multipart.
// File est le flux brut du média, lu une seule fois, jusqu'au bout.
type UploadFeedCmd struct {
	UserID      string
	FileName    string
	Description string
	File        io.Reader
}

type FeedService interface {
	// UploadFeed orchestre l'ingestion : validation → blob → métadonnées.
	// Retourne le Feed commité (avec son ID généré).
	UploadFeed(ctx context.Context, cmd UploadFeedCmd) (*domain.Feed, error)

	// GetUserFeeds renvoie une page de feeds triés par date décroissante,
	// filtrée par userID si non vide. Le token retourné est opaque ;
	// vide = fin des résultats.
	GetUserFeeds(ctx context.Context, userID string, pageSize int, cursor string) ([]*domain.Feed, string, error)
}

type IdentityService interface {
	// CreateUser génère une identité aléatoire (username + avatar) et la persiste.
	CreateUser(ctx context.Context) (*domain.User, error)
}
