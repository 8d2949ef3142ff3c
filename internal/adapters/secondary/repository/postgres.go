package repository

import (
	"context"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: pool}
}

// --- FEEDS ---

// Save : insertion simple. La table feeds est partitionnée par hash sur
// user_id ; Postgres route la ligne vers la partition du user, donc tous
// les feeds d'un même user restent colocalisés.
func (r *PostgresRepo) Save(ctx context.Context, feed *domain.Feed) error {
	q := `
		INSERT INTO feeds (id, user_id, description, feed_url, upload_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, q,
		feed.ID,
		feed.UserID,
		feed.Description,
		feed.FeedUrl,
		feed.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("%w: insert feed: %v", domain.ErrPersistence, err)
	}
	return nil
}

// List : pagination keyset (jamais d'OFFSET : instable sous écritures
// concurrentes et ruineux sur les grandes tables). Le prédicat curseur
// reprend exactement l'ordre de tri (upload_date, id) décroissant.
func (r *PostgresRepo) List(ctx context.Context, userID string, limit int, cursor domain.FeedCursor) ([]*domain.Feed, error) {
	q, args := buildListQuery(userID, limit, cursor)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list feeds: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

// buildListQuery assemble la requête dynamiquement : filtre user_id
// optionnel (requête mono-partition) ou global (toutes partitions, plus
// cher mais nécessaire pour la vue d'ensemble).
func buildListQuery(userID string, limit int, cursor domain.FeedCursor) (string, []interface{}) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "user_id", "description", "feed_url", "upload_date")
	sb.From("feeds")

	if userID != "" {
		sb.Where(sb.Equal("user_id", userID))
	}

	if !cursor.IsZero() {
		// Strictement "après" le curseur dans l'ordre de tri :
		// soit plus ancien, soit même date et id plus petit.
		sb.Where(sb.Or(
			sb.LessThan("upload_date", cursor.UploadDate),
			sb.And(
				sb.Equal("upload_date", cursor.UploadDate),
				sb.LessThan("id", cursor.ID),
			),
		))
	}

	sb.OrderBy("upload_date DESC", "id DESC")
	sb.Limit(limit)

	return sb.BuildWithFlavor(sqlbuilder.PostgreSQL)
}

// --- USERS ---

// PostgresUserRepo est séparé du repo feeds : les deux ports n'ont pas
// le même cycle de vie côté core, même si le pool est partagé.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, user *domain.User) error {
	q := `
		INSERT INTO users (id, username, profile_pic_url, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, q, user.ID, user.Username, user.ProfilePicUrl, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert user: %v", domain.ErrPersistence, err)
	}
	return nil
}

// --- HELPERS ---

func collectFeeds(rows pgx.Rows) ([]*domain.Feed, error) {
	var feeds []*domain.Feed
	for rows.Next() {
		var f domain.Feed
		if err := rows.Scan(&f.ID, &f.UserID, &f.Description, &f.FeedUrl, &f.UploadDate); err != nil {
			return nil, fmt.Errorf("%w: scan feed: %v", domain.ErrPersistence, err)
		}
		f.UploadDate = f.UploadDate.UTC()
		feeds = append(feeds, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return feeds, nil
}
