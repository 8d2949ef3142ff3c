package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/ports"
)

// --- FAKES (implémentent les ports secondaires, avec compteurs d'appels) ---

type fakeMediaStore struct {
	calls    int
	err      error
	lastName string
	gotBytes []byte
	journal  *[]string
}

func (m *fakeMediaStore) Upload(ctx context.Context, r io.Reader, fileName string) (string, error) {
	m.calls++
	if m.journal != nil {
		*m.journal = append(*m.journal, "upload")
	}
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.gotBytes = data
	m.lastName = fileName
	// Même convention de clé que le vrai store : uuid frais + nom d'origine.
	return fmt.Sprintf("https://store.local/media/%s-%s", uuid.NewString(), fileName), nil
}

type fakeFeedRepo struct {
	saveCalls int
	saveErr   error
	listErr   error
	saved     []*domain.Feed
	lastLimit int
	journal   *[]string
}

func (r *fakeFeedRepo) Save(ctx context.Context, feed *domain.Feed) error {
	r.saveCalls++
	if r.journal != nil {
		*r.journal = append(*r.journal, "save")
	}
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, feed)
	return nil
}

// List rejoue le contrat keyset du vrai repo sur une slice en mémoire :
// tri (upload_date, id) décroissant, strictement après le curseur.
func (r *fakeFeedRepo) List(ctx context.Context, userID string, limit int, cursor domain.FeedCursor) ([]*domain.Feed, error) {
	r.lastLimit = limit
	if r.listErr != nil {
		return nil, r.listErr
	}

	var matching []*domain.Feed
	for _, f := range r.saved {
		if userID != "" && f.UserID != userID {
			continue
		}
		if !cursor.IsZero() {
			older := f.UploadDate.Before(cursor.UploadDate)
			tieBreak := f.UploadDate.Equal(cursor.UploadDate) && f.ID < cursor.ID
			if !older && !tieBreak {
				continue
			}
		}
		matching = append(matching, f)
	}

	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].UploadDate.Equal(matching[j].UploadDate) {
			return matching[i].UploadDate.After(matching[j].UploadDate)
		}
		return matching[i].ID > matching[j].ID
	})

	if len(matching) > limit {
		matching = matching[:limit]
	}
	return matching, nil
}

type fakePublisher struct {
	calls int
	err   error
	last  *domain.Feed
}

func (p *fakePublisher) PublishFeedCreated(ctx context.Context, feed *domain.Feed) error {
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.last = feed
	return nil
}

func validCmd() ports.UploadFeedCmd {
	return ports.UploadFeedCmd{
		UserID:      "u1",
		FileName:    "cat.jpg",
		Description: "mon chat",
		File:        bytes.NewReader([]byte("jpeg bytes")),
	}
}

// --- INGESTION ---

func TestUploadFeed_MissingFieldsRejectedBeforeAnyIO(t *testing.T) {
	cases := map[string]func(*ports.UploadFeedCmd){
		"missing user id":   func(c *ports.UploadFeedCmd) { c.UserID = "" },
		"blank user id":     func(c *ports.UploadFeedCmd) { c.UserID = "   " },
		"missing file name": func(c *ports.UploadFeedCmd) { c.FileName = "" },
		"missing file":      func(c *ports.UploadFeedCmd) { c.File = nil },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			media := &fakeMediaStore{}
			repo := &fakeFeedRepo{}
			pub := &fakePublisher{}
			svc := NewFeedService(repo, media, pub)

			cmd := validCmd()
			mutate(&cmd)

			_, err := svc.UploadFeed(context.Background(), cmd)

			require.ErrorIs(t, err, domain.ErrMissingFields)
			// Zéro appel collaborateur : la validation précède tout I/O.
			assert.Zero(t, media.calls)
			assert.Zero(t, repo.saveCalls)
			assert.Zero(t, pub.calls)
		})
	}
}

func TestUploadFeed_BlobThenMetadataThenEvent(t *testing.T) {
	var journal []string
	media := &fakeMediaStore{journal: &journal}
	repo := &fakeFeedRepo{journal: &journal}
	pub := &fakePublisher{}
	svc := NewFeedService(repo, media, pub)

	before := time.Now().UTC()
	feed, err := svc.UploadFeed(context.Background(), validCmd())
	after := time.Now().UTC()

	require.NoError(t, err)
	require.NotNil(t, feed)

	// L'ordre est l'invariant central : jamais de métadonnées avant le blob.
	assert.Equal(t, []string{"upload", "save"}, journal)

	_, err = uuid.Parse(feed.ID)
	assert.NoError(t, err, "l'ID doit être un UUID généré côté serveur")
	assert.Equal(t, "u1", feed.UserID)
	assert.Equal(t, "mon chat", feed.Description)
	assert.Contains(t, feed.FeedUrl, "cat.jpg")

	// UploadDate assignée par le serveur, dans la fenêtre de l'appel.
	assert.False(t, feed.UploadDate.Before(before))
	assert.False(t, feed.UploadDate.After(after))

	assert.Equal(t, []byte("jpeg bytes"), media.gotBytes)
	require.Len(t, repo.saved, 1)
	assert.Same(t, feed, repo.saved[0])
	assert.Same(t, feed, pub.last)
}

func TestUploadFeed_ObjectStoreFailureAbortsBeforeMetadata(t *testing.T) {
	media := &fakeMediaStore{err: fmt.Errorf("%w: connection reset", domain.ErrObjectStore)}
	repo := &fakeFeedRepo{}
	pub := &fakePublisher{}
	svc := NewFeedService(repo, media, pub)

	_, err := svc.UploadFeed(context.Background(), validCmd())

	require.ErrorIs(t, err, domain.ErrObjectStore)
	assert.Zero(t, repo.saveCalls, "aucune écriture de métadonnées après un échec d'upload")
	assert.Zero(t, pub.calls)
}

func TestUploadFeed_PersistenceFailureSkipsNotification(t *testing.T) {
	media := &fakeMediaStore{}
	repo := &fakeFeedRepo{saveErr: fmt.Errorf("%w: timeout", domain.ErrPersistence)}
	pub := &fakePublisher{}
	svc := NewFeedService(repo, media, pub)

	_, err := svc.UploadFeed(context.Background(), validCmd())

	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, pub.calls)
}

func TestUploadFeed_NotificationFailureNeverSurfaces(t *testing.T) {
	media := &fakeMediaStore{}
	repo := &fakeFeedRepo{}
	pub := &fakePublisher{err: fmt.Errorf("%w: nats down", domain.ErrNotification)}
	svc := NewFeedService(repo, media, pub)

	feed, err := svc.UploadFeed(context.Background(), validCmd())

	// L'écriture est commitée : la notification est best-effort.
	require.NoError(t, err)
	require.NotNil(t, feed)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, 1, pub.calls)
}

func TestUploadFeed_RetriesMintFreshIdentifiers(t *testing.T) {
	media := &fakeMediaStore{}
	repo := &fakeFeedRepo{}
	svc := NewFeedService(repo, media, &fakePublisher{})

	first, err := svc.UploadFeed(context.Background(), validCmd())
	require.NoError(t, err)
	second, err := svc.UploadFeed(context.Background(), validCmd())
	require.NoError(t, err)

	// Un retry ne réutilise jamais l'ID ni la clé de blob de la tentative
	// précédente : aucune collision possible.
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.FeedUrl, second.FeedUrl)
}

// --- REQUÊTES PAGINÉES ---

func seedFeeds(t *testing.T, repo *fakeFeedRepo) (all, u1 []*domain.Feed) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		userID := "u1"
		if i%3 == 0 {
			userID = "u2"
		}
		f := domain.NewFeed(userID, fmt.Sprintf("feed %d", i), fmt.Sprintf("https://store.local/media/%d", i))
		// Quelques timestamps identiques pour exercer le tie-break par ID.
		f.UploadDate = base.Add(time.Duration(i/2) * time.Minute)
		repo.saved = append(repo.saved, f)
		all = append(all, f)
		if userID == "u1" {
			u1 = append(u1, f)
		}
	}
	return all, u1
}

func collectAllPages(t *testing.T, svc ports.FeedService, userID string, pageSize int) []*domain.Feed {
	t.Helper()
	var out []*domain.Feed
	cursor := ""
	for page := 0; page < 50; page++ {
		feeds, next, err := svc.GetUserFeeds(context.Background(), userID, pageSize, cursor)
		require.NoError(t, err)
		require.LessOrEqual(t, len(feeds), pageSize, "jamais plus que la taille demandée")
		out = append(out, feeds...)
		if next == "" {
			return out
		}
		require.NotEmpty(t, feeds, "un token ne doit jamais mener à une page vide")
		cursor = next
	}
	t.Fatal("pagination did not terminate")
	return nil
}

func assertStrictDescending(t *testing.T, feeds []*domain.Feed) {
	t.Helper()
	for i := 1; i < len(feeds); i++ {
		prev, cur := feeds[i-1], feeds[i]
		if prev.UploadDate.Equal(cur.UploadDate) {
			assert.Greater(t, prev.ID, cur.ID)
			continue
		}
		assert.True(t, prev.UploadDate.After(cur.UploadDate),
			"ordre upload_date décroissant attendu entre %d et %d", i-1, i)
	}
}

func TestGetUserFeeds_ConcatenatedPagesAreExactlyOnce(t *testing.T) {
	repo := &fakeFeedRepo{}
	all, u1 := seedFeeds(t, repo)
	svc := NewFeedService(repo, &fakeMediaStore{}, &fakePublisher{})

	t.Run("global view", func(t *testing.T) {
		got := collectAllPages(t, svc, "", 10)
		require.Len(t, got, len(all))
		assertStrictDescending(t, got)

		seen := map[string]bool{}
		for _, f := range got {
			assert.False(t, seen[f.ID], "feed %s renvoyé deux fois", f.ID)
			seen[f.ID] = true
		}
	})

	t.Run("single user", func(t *testing.T) {
		got := collectAllPages(t, svc, "u1", 7)
		require.Len(t, got, len(u1))
		assertStrictDescending(t, got)
		for _, f := range got {
			assert.Equal(t, "u1", f.UserID)
		}
	})
}

func TestGetUserFeeds_NewerFirstForSameUser(t *testing.T) {
	repo := &fakeFeedRepo{}
	svc := NewFeedService(repo, &fakeMediaStore{}, &fakePublisher{})

	a := domain.NewFeed("u1", "A", "https://store.local/a")
	a.UploadDate = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	b := domain.NewFeed("u1", "B", "https://store.local/b")
	b.UploadDate = time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	repo.saved = []*domain.Feed{a, b}

	feeds, next, err := svc.GetUserFeeds(context.Background(), "u1", 10, "")
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "B", feeds[0].Description)
	assert.Equal(t, "A", feeds[1].Description)
	assert.Empty(t, next)
}

func TestGetUserFeeds_EmptyResultHasNoCursor(t *testing.T) {
	svc := NewFeedService(&fakeFeedRepo{}, &fakeMediaStore{}, &fakePublisher{})

	feeds, next, err := svc.GetUserFeeds(context.Background(), "ghost", 10, "")

	require.NoError(t, err)
	assert.Empty(t, feeds)
	assert.Empty(t, next)
}

func TestGetUserFeeds_ExactMultipleEndsWithoutTrailingPage(t *testing.T) {
	repo := &fakeFeedRepo{}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		f := domain.NewFeed("u1", fmt.Sprintf("%d", i), "https://store.local/x")
		f.UploadDate = base.Add(time.Duration(i) * time.Second)
		repo.saved = append(repo.saved, f)
	}
	svc := NewFeedService(repo, &fakeMediaStore{}, &fakePublisher{})

	// 10 feeds, page de 10 : tout tient dans la première page, pas de token.
	feeds, next, err := svc.GetUserFeeds(context.Background(), "u1", 10, "")
	require.NoError(t, err)
	assert.Len(t, feeds, 10)
	assert.Empty(t, next)
}

func TestGetUserFeeds_InvalidCursorIsClientError(t *testing.T) {
	svc := NewFeedService(&fakeFeedRepo{}, &fakeMediaStore{}, &fakePublisher{})

	_, _, err := svc.GetUserFeeds(context.Background(), "u1", 10, "!!!pas-un-token!!!")

	require.ErrorIs(t, err, domain.ErrInvalidCursor)
}

func TestGetUserFeeds_DefaultsPageSizeAndOverfetchesByOne(t *testing.T) {
	repo := &fakeFeedRepo{}
	svc := NewFeedService(repo, &fakeMediaStore{}, &fakePublisher{})

	_, _, err := svc.GetUserFeeds(context.Background(), "", 0, "")

	require.NoError(t, err)
	// Défaut 10, plus la ligne sentinelle de détection de page suivante.
	assert.Equal(t, DefaultPageSize+1, repo.lastLimit)
}

func TestGetUserFeeds_PersistenceFailurePropagates(t *testing.T) {
	repo := &fakeFeedRepo{listErr: fmt.Errorf("%w: partition unavailable", domain.ErrPersistence)}
	svc := NewFeedService(repo, &fakeMediaStore{}, &fakePublisher{})

	_, _, err := svc.GetUserFeeds(context.Background(), "", 10, "")

	require.ErrorIs(t, err, domain.ErrPersistence)
}
