package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gradlinkph/gradlink-backend/internal/logger"
	"github.com/gradlinkph/gradlink-backend/internal/models"
	"github.com/gradlinkph/gradlink-backend/internal/repository"
)

// UserRepoForSeed — создание пользователей при наполнении демо-данными.
type UserRepoForSeed interface {
	Create(ctx context.Context, user *models.User) error
}

// GraduateRepoForSeed — профили и категории демо-исполнителей.
type GraduateRepoForSeed interface {
	Upsert(ctx context.Context, graduate *models.Graduate) error
	ReplaceCategories(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error
}

// CategoryRepoForSeed — справочник категорий для раздачи демо-исполнителям.
type CategoryRepoForSeed interface {
	List(ctx context.Context) ([]models.Category, error)
}

// SeedService наполняет базу демо-данными для development окружения:
// исполнители с координатами вокруг Манилы и пара заказчиков.
// Email детерминированные, так что повторный запуск ничего не дублирует.
type SeedService struct {
	users      UserRepoForSeed
	graduates  GraduateRepoForSeed
	categories CategoryRepoForSeed
}

// NewSeedService создаёт сервис демо-данных.
func NewSeedService(users UserRepoForSeed, graduates GraduateRepoForSeed, categories CategoryRepoForSeed) *SeedService {
	return &SeedService{users: users, graduates: graduates, categories: categories}
}

var seedNames = []string{
	"Juan dela Cruz", "Maria Santos", "Jose Ramos", "Ana Reyes",
	"Carlo Mendoza", "Liza Bautista", "Ramon Garcia", "Grace Aquino",
	"Paolo Torres", "Nina Villanueva",
}

// Центр разброса демо-координат — Манила.
const (
	seedCenterLat = 14.5995
	seedCenterLon = 120.9842
)

// SeedDemoData создаёт numGraduates исполнителей и двух заказчиков.
// Уже существующие аккаунты пропускаются.
func (s *SeedService) SeedDemoData(ctx context.Context, numGraduates int) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("seed service: не удалось получить категории: %w", err)
	}
	if len(categories) == 0 {
		return errors.New("seed service: справочник категорий пуст")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("seed service: не удалось захешировать пароль: %w", err)
	}

	created := 0
	for i := 0; i < numGraduates; i++ {
		user := &models.User{
			Email:        fmt.Sprintf("seed.graduate%d@gradlink.dev", i+1),
			Username:     fmt.Sprintf("seed_graduate_%d", i+1),
			PasswordHash: string(passHash),
			Role:         models.RoleGraduate,
			IsVerified:   true,
		}

		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				continue
			}
			return fmt.Errorf("seed service: не удалось создать пользователя: %w", err)
		}

		lat := seedCenterLat + (rand.Float64()-0.5)*0.1
		lon := seedCenterLon + (rand.Float64()-0.5)*0.1
		graduate := &models.Graduate{
			UserID:      user.ID,
			DisplayName: seedNames[i%len(seedNames)],
			IsAvailable: true,
			Latitude:    &lat,
			Longitude:   &lon,
		}
		if err := s.graduates.Upsert(ctx, graduate); err != nil {
			return fmt.Errorf("seed service: не удалось создать профиль: %w", err)
		}

		category := categories[rand.Intn(len(categories))]
		if err := s.graduates.ReplaceCategories(ctx, user.ID, []uuid.UUID{category.ID}); err != nil {
			return fmt.Errorf("seed service: не удалось назначить категорию: %w", err)
		}
		created++
	}

	for i := 0; i < 2; i++ {
		client := &models.User{
			Email:        fmt.Sprintf("seed.client%d@gradlink.dev", i+1),
			Username:     fmt.Sprintf("seed_client_%d", i+1),
			PasswordHash: string(passHash),
			Role:         models.RoleClient,
			IsVerified:   true,
		}
		if err := s.users.Create(ctx, client); err != nil && !errors.Is(err, repository.ErrEmailTaken) {
			return fmt.Errorf("seed service: не удалось создать заказчика: %w", err)
		}
	}

	if logger.Log != nil {
		logger.Log.WithField("created", created).Info("seed service: демо-данные готовы")
	}
	return nil
}
