package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
	"github.com/minio/minio-go/v7"
)

// MinioStore pousse les médias dans un bucket S3-compatible et renvoie
// l'URL publique du blob. Aucune conscience des métadonnées : le store
// d'objets ne connaît que des clés et des octets.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

// EnsureBucket crée le bucket au démarrage s'il n'existe pas (idempotent).
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: bucket check: %v", domain.ErrObjectStore, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: make bucket: %v", domain.ErrObjectStore, err)
	}
	return nil
}

// Upload streame le fichier sous une clé unique et renvoie son URL.
// Taille -1 : le client découpe en multipart, le flux n'est jamais
// bufferisé en entier en mémoire.
func (s *MinioStore) Upload(ctx context.Context, r io.Reader, fileName string) (string, error) {
	key := objectKey(fileName)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %q: %v", domain.ErrObjectStore, key, err)
	}

	return s.objectURL(key), nil
}

// objectKey préfixe le nom d'origine par un UUID frais : deux uploads
// du même fichier ne se marchent jamais dessus.
func objectKey(fileName string) string {
	return fmt.Sprintf("%s-%s", uuid.NewString(), fileName)
}

func (s *MinioStore) objectURL(key string) string {
	base := strings.TrimRight(s.client.EndpointURL().String(), "/")
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, key)
}
