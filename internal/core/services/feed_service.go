package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/ports"
)

const DefaultPageSize = 10

type feedService struct {
	repo      ports.FeedRepository
	media     ports.MediaStore
	publisher ports.EventPublisher
}

func NewFeedService(repo ports.FeedRepository, media ports.MediaStore, pub ports.EventPublisher) ports.FeedService {
	return &feedService{repo: repo, media: media, publisher: pub}
}

// UploadFeed : le blob d'abord, les métadonnées ensuite. L'ordre est un
// invariant dur : un enregistrement Feed ne doit jamais référencer un
// blob inexistant. L'inverse (blob orphelin si on crashe entre les deux
// écritures) est un mode de panne accepté, sans compensation.
func (s *feedService) UploadFeed(ctx context.Context, cmd ports.UploadFeedCmd) (*domain.Feed, error) {
	// 1. Validation AVANT tout I/O : aucun appel collaborateur si un champ manque.
	if cmd.File == nil || strings.TrimSpace(cmd.UserID) == "" || strings.TrimSpace(cmd.FileName) == "" {
		return nil, fmt.Errorf("%w: userId, fileName and file are required", domain.ErrMissingFields)
	}

	// 2. Upload du média (clé unique générée par le store, pas de collision
	// possible entre deux fichiers homonymes).
	feedUrl, err := s.media.Upload(ctx, cmd.File, cmd.FileName)
	if err != nil {
		return nil, err
	}

	// 3. Construction + persistance des métadonnées, partitionnées par UserID.
	feed := domain.NewFeed(cmd.UserID, cmd.Description, feedUrl)
	if err := s.repo.Save(ctx, feed); err != nil {
		// Pas de cleanup du blob : un retry de l'appelant mintera un
		// nouvel ID et une nouvelle clé, aucune collision possible.
		return nil, err
	}

	// 4. Notification best-effort : l'écriture est déjà commitée, une
	// panne ici est loggée et jamais remontée à l'appelant.
	if err := s.publisher.PublishFeedCreated(ctx, feed); err != nil {
		slog.Warn("Feed created event not published", "feed_id", feed.ID, "error", err)
	}

	return feed, nil
}

// GetUserFeeds : pure délégation vers le repository, plus l'encodage du
// token. Ce niveau existe comme couture pour du filtrage/autorisation
// futur, sans toucher à l'adapter de stockage.
func (s *feedService) GetUserFeeds(ctx context.Context, userID string, pageSize int, token string) ([]*domain.Feed, string, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	// 1. Décodage du token (vide = première page).
	var cursor domain.FeedCursor
	if token != "" {
		var err error
		cursor, err = decodeCursor(token)
		if err != nil {
			return nil, "", err
		}
	}

	// 2. On demande une ligne de plus que la page : sa présence prouve
	// qu'une page suivante existe. Sans elle, pas de token, et le client
	// sait qu'il est au bout (jamais de page vide en fin de parcours).
	feeds, err := s.repo.List(ctx, userID, pageSize+1, cursor)
	if err != nil {
		return nil, "", err
	}

	// 3. Calcul du prochain token à partir de la DERNIÈRE ligne servie.
	nextCursor := ""
	if len(feeds) > pageSize {
		feeds = feeds[:pageSize]
		nextCursor = encodeCursor(feeds[pageSize-1])
	}

	return feeds, nextCursor, nil
}
