package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/namegen"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/ports"
)

// Nombre d'avatars disponibles sur le CDN (pp1.jpg … pp25.jpg).
const profilePicCount = 25

type identityService struct {
	repo    ports.UserRepository
	cdnBase string

	// La source d'aléa est injectée pour rester testable (un seed fixe
	// donne des identités reproductibles). *rand.Rand n'est pas sûr en
	// concurrence, d'où le mutex.
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewIdentityService(repo ports.UserRepository, rnd *rand.Rand, cdnBase string) ports.IdentityService {
	return &identityService{repo: repo, rnd: rnd, cdnBase: cdnBase}
}

func (s *identityService) CreateUser(ctx context.Context) (*domain.User, error) {
	// 1. Génération de l'identité (username bilingue + avatar CDN).
	s.mu.Lock()
	username := namegen.Username(s.rnd)
	picIndex := 1 + s.rnd.Intn(profilePicCount)
	s.mu.Unlock()

	user := domain.NewUser(username, fmt.Sprintf("%spp%d.jpg", s.cdnBase, picIndex))

	// 2. Persistance (clé de partition = ID du user lui-même).
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
