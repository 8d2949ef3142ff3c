package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
)

const feedCreatedSubject = "feed.created"

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Structure de l'event (contract implicite avec les consommateurs de
// notifications "nouveau feed").
type FeedCreatedEvent struct {
	FeedID      string    `json:"feed_id"`
	UserID      string    `json:"user_id"`
	FeedUrl     string    `json:"feed_url"`
	Description string    `json:"description,omitempty"`
	UploadDate  time.Time `json:"upload_date"`
}

// PublishFeedCreated est fire-and-forget : NATS core, pas de stream ni
// d'ack persisté. Le service appelant avale l'erreur ; la livraison
// n'est jamais une condition de succès de l'ingestion.
func (p *NatsPublisher) PublishFeedCreated(ctx context.Context, feed *domain.Feed) error {
	event := FeedCreatedEvent{
		FeedID:      feed.ID,
		UserID:      feed.UserID,
		FeedUrl:     feed.FeedUrl,
		Description: feed.Description,
		UploadDate:  feed.UploadDate,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", domain.ErrNotification, err)
	}

	msg := &nats.Msg{
		Subject: feedCreatedSubject,
		Data:    data,
		Header:  nats.Header{},
	}
	// Injection du contexte de trace dans les headers NATS, pour que les
	// consommateurs raccrochent leurs spans à la requête d'origine.
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("%w: publish %s: %v", domain.ErrNotification, feedCreatedSubject, err)
	}
	return nil
}
