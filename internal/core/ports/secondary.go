package ports

import (
	"context"
	"io"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
)

// --- DRIVEN (Ce dont le service a besoin) ---

type FeedRepository interface {
	// Save insère un feed. La clé de partition est TOUJOURS feed.UserID :
	// tous les feeds d'un utilisateur atterrissent dans la même partition.
	Save(ctx context.Context, feed *domain.Feed) error

	// List renvoie jusqu'à limit feeds triés par (upload_date, id) décroissant,
	// strictement antérieurs au curseur. userID vide = toutes partitions.
	List(ctx context.Context, userID string, limit int, cursor domain.FeedCursor) ([]*domain.Feed, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
}

type MediaStore interface {
	// Upload pousse le flux sous une clé unique dérivée de fileName et
	// retourne l'URL publique du blob. Le flux est consommé entièrement.
	Upload(ctx context.Context, r io.Reader, fileName string) (string, error)
}

type EventPublisher interface {
	// PublishFeedCreated est best-effort : l'appelant ne doit jamais
	// échouer l'ingestion sur une erreur de publication.
	PublishFeedCreated(ctx context.Context, feed *domain.Feed) error
}
