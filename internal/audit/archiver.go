package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

// Source lists audit rows created in [from, to).
type Source interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.AuditLog, error)
}

// ObjectPutter uploads one object. S3Putter is the production implementation.
type ObjectPutter interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) ListBetween(ctx context.Context, from, to time.Time) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return rows, nil
}

type Archiver struct {
	source Source
	putter ObjectPutter
	logger *logging.Logger
}

func NewArchiver(source Source, putter ObjectPutter, logger *logging.Logger) *Archiver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{source: source, putter: putter, logger: logger}
}

type archiveLine struct {
	ID        uuid.UUID  `json:"id"`
	ShopID    uuid.UUID  `json:"shop_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Action    string     `json:"action"`
	Entity    string     `json:"entity,omitempty"`
	EntityID  *uuid.UUID `json:"entity_id,omitempty"`
	Metadata  string     `json:"metadata,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ArchiveKey is audit/yyyy/mm/dd.jsonl for day's UTC date.
func ArchiveKey(day time.Time) string {
	return "audit/" + day.UTC().Format("2006/01/02") + ".jsonl"
}

func EncodeJSONLines(rows []models.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		line := archiveLine{
			ID:        r.ID,
			ShopID:    r.ShopID,
			UserID:    r.UserID,
			Action:    r.Action,
			Entity:    r.Entity,
			EntityID:  r.EntityID,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt.UTC(),
		}
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// ArchiveDay exports the UTC day containing day and returns the object
// key and row count. An empty day uploads nothing.
func (a *Archiver) ArchiveDay(ctx context.Context, day time.Time) (string, int, error) {
	y, m, d := day.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows, err := a.source.ListBetween(ctx, from, to)
	if err != nil {
		return "", 0, err
	}

	key := ArchiveKey(from)
	if len(rows) == 0 {
		a.logger.Info("audit archive skipped, no rows", "day", from.Format("2006-01-02"))
		return key, 0, nil
	}

	body, err := EncodeJSONLines(rows)
	if err != nil {
		return "", 0, fmt.Errorf("encode audit rows: %w", err)
	}

	if err := a.putter.Put(ctx, key, bytes.NewReader(body), "application/x-ndjson"); err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", key, err)
	}

	a.logger.Info("audit archive uploaded", "key", key, "rows", len(rows))
	return key, len(rows), nil
}
