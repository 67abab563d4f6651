package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 审计事件类别。
const (
	KindTrade       = "trade"
	KindDeposit     = "deposit"
	KindModeChange  = "mode_change"
	KindLegacyWrite = "legacy_write"
	KindProposal    = "proposal_resolved"
)

// AuditRecord 是一条不可变的操作审计流水。
type AuditRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Kind      string         `gorm:"size:32;index" json:"kind"`
	Ref       string         `gorm:"size:128" json:"ref"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// AuditStore 把可变操作落进 sqlite，供仪表盘的活动面板查询。
type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(path string) (*AuditStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("audit database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newAuditStore(db)
}

func newAuditStore(db *gorm.DB) (*AuditStore, error) {
	if err := db.AutoMigrate(&AuditRecord{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
	}
	return &AuditStore{db: db}, nil
}

// Record 写入一条审计流水。payload 会序列化为 JSON 列。
func (s *AuditStore) Record(ctx context.Context, kind, ref string, payload any) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode audit payload failed: %w", err)
	}
	rec := AuditRecord{
		ID:        uuid.NewString(),
		Kind:      kind,
		Ref:       ref,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Recent 返回最近的 limit 条流水，新的在前。
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]AuditRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []AuditRecord
	err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}
