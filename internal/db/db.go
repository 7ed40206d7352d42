package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barber-agenda/internal/config"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

func NewDB(cfg *config.Config, logger *logging.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db, cfg.NoShowBlocksSlot); err != nil {
		return nil, err
	}

	logger.Info("database ready", "no_show_blocks_slot", cfg.NoShowBlocksSlot)
	return db, nil
}

// Migrate runs AutoMigrate and then the constraints gorm tags cannot express.
func Migrate(db *gorm.DB, noShowBlocks bool) error {
	if err := db.AutoMigrate(
		&models.Shop{},
		&models.User{},
		&models.ShopMember{},
		&models.Professional{},
		&models.Service{},
		&models.BusinessHours{},
		&models.TimeOff{},
		&models.Client{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return applyConstraints(db, noShowBlocks)
}

// applyConstraints reconciles the overlap constraint with the no-show
// policy, adds the checks and indexes, and backfills shop timezones.
func applyConstraints(db *gorm.DB, noShowBlocks bool) error {
	var existing string
	if err := db.Raw(
		`SELECT pg_get_constraintdef(oid) FROM pg_constraint WHERE conname = ?`,
		NoOverlapConstraint,
	).Scan(&existing).Error; err != nil {
		return fmt.Errorf("read overlap constraint: %w", err)
	}

	for _, stmt := range ConstraintStatements(existing, noShowBlocks) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}

	if err := db.Exec(`
        UPDATE shops
        SET timezone = 'America/Sao_Paulo'
        WHERE timezone IS NULL OR timezone = ''
    `).Error; err != nil {
		return fmt.Errorf("backfill shop timezone: %w", err)
	}

	return nil
}
