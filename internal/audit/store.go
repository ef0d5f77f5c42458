package audit

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Event is one row in the audit trail. Tokens are never stored raw, only
// their fingerprint, so the trail can correlate sessions without being a
// credential leak.
type Event struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Action           string    `gorm:"size:64;index;not null" json:"action"`
	Outcome          string    `gorm:"size:32;index;not null" json:"outcome"`
	Email            string    `gorm:"size:256;index" json:"email,omitempty"`
	DeviceID         string    `gorm:"size:64;index" json:"device_id,omitempty"`
	TokenFingerprint string    `gorm:"size:64;index" json:"token_fingerprint,omitempty"`
	Path             string    `gorm:"size:512" json:"path,omitempty"`
	RemoteAddr       string    `gorm:"size:64" json:"remote_addr,omitempty"`
	Detail           string    `gorm:"size:1024" json:"detail,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

type Store struct{ db *gorm.DB }

// Open connects the audit database and migrates the event table. An empty
// driver disables the trail and returns a nil store, which every method
// tolerates.
func Open(driver, dsn string) (*Store, error) {
	if driver == "" {
		return nil, nil
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("open audit db: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, ev Event) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(&ev).Error
}

// Close releases the underlying database handle. Safe on a nil store.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close audit db: %w", err)
	}
	return db.Close()
}

// Recent returns the newest events, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s == nil {
		return nil, nil
	}
	var events []Event
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&events).Error
	return events, err
}

// Fingerprint derives a stable, non-reversible identifier for a bearer
// token. Empty tokens map to the empty string.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
