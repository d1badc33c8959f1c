package repository

import (
	"fmt"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ใช้เลขคงที่ตัวเดียวกันทั้งระบบเพื่อ lock งาน migrate
const migrateLockID int64 = 20260222

func Models() []any {
	return []any{
		&domain.User{},
		&domain.EoVerification{},
		&domain.EO{},
		&domain.EOTeamMember{},
		&domain.Event{},
		&domain.EventAccess{},
		&domain.TicketType{},
		&domain.Ticket{},
		&domain.ScanLog{},
		&domain.AdminAuditLog{},
		&domain.EoAuditLog{},
	}
}

// Open connects with duplicate-key translation on, so unique violations
// surface as gorm.ErrDuplicatedKey on every driver.
func Open(driver, dsn string, silent bool) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	switch driver {
	case "postgres", "":
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), cfg)
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		// sqlite has a single writer; one connection keeps transactions serialized
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// Migrate runs AutoMigrate; on postgres it is guarded by an advisory lock
// so several replicas can start at once.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
			return fmt.Errorf("migration lock: %w", err)
		}
		defer func() {
			_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
		}()
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return nil
}
