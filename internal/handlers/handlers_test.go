package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
	"github.com/BruksfildServices01/barber-agenda/internal/validators"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validators.RegisterBindings(); err != nil {
		panic(err)
	}
}

// Sunday 2026-03-01 12:00 UTC
var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stubRepo answers the lookups the handler tests reach. Anything else
// panics through the nil embedded interface.
type stubRepo struct {
	domain.Repository

	shop     *models.Shop
	prof     *models.Professional
	existing *models.Appointment
}

func (s *stubRepo) GetShopByID(_ context.Context, id uuid.UUID) (*models.Shop, error) {
	if s.shop == nil || s.shop.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.shop, nil
}

func (s *stubRepo) GetShopBySlug(_ context.Context, slug string) (*models.Shop, error) {
	if s.shop == nil || s.shop.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return s.shop, nil
}

func (s *stubRepo) GetProfessional(_ context.Context, shopID, id uuid.UUID) (*models.Professional, error) {
	if s.prof == nil || s.prof.ID != id || s.prof.ShopID != shopID {
		return nil, domain.ErrNotFound
	}
	return s.prof, nil
}

func (s *stubRepo) FindByIdempotencyKey(_ context.Context, shopID uuid.UUID, key string) (*models.Appointment, error) {
	if s.existing == nil || s.existing.IdempotencyKey == nil || *s.existing.IdempotencyKey != key {
		return nil, domain.ErrNotFound
	}
	return s.existing, nil
}

func newStub() *stubRepo {
	shop := &models.Shop{ID: uuid.New(), Name: "Barbearia Centro", Slug: "centro", Timezone: "UTC"}
	return &stubRepo{
		shop: shop,
		prof: &models.Professional{ID: uuid.New(), ShopID: shop.ID, Name: "João", Active: true},
	}
}

// asActor stands in for AuthMiddleware.
func asActor(shopID uuid.UUID, role permissions.Role) gin.HandlerFunc {
	userID := uuid.New()
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextShopID, shopID)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}
