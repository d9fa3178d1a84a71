package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/excavator-go/internal/domain/shared"
)

// OperationLogEntry is one persisted operation log line
type OperationLogEntry struct {
	ID          int
	OperationID string
	Agent       string
	Timestamp   time.Time
	Level       string
	Message     string
	Metadata    map[string]interface{}
}

// GormOperationLogRepository stores operation logs with a short
// deduplication window so that repeated warnings for the same operation
// do not flood the table.
type GormOperationLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // operationID|level|message -> last write
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormOperationLogRepository creates a new operation log repository.
// If clock is nil, uses RealClock.
func NewGormOperationLogRepository(db *gorm.DB, clock shared.Clock) *GormOperationLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormOperationLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  10 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes an entry unless an identical one was written inside the window
func (r *GormOperationLogRepository) Log(ctx context.Context, operationID, agent, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := operationID + "|" + level + "|" + message

	r.dedupMu.Lock()
	if last, ok := r.dedupCache[cacheKey]; ok && now.Sub(last) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(raw)
		}
	}

	return r.db.WithContext(ctx).Create(&OperationLogModel{
		OperationID: operationID,
		Agent:       agent,
		Timestamp:   now,
		Level:       level,
		Message:     message,
		Metadata:    metadataJSON,
	}).Error
}

// must hold dedupMu
func (r *GormOperationLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, ts := range r.dedupCache {
		if ts.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs returns the newest entries for an operation, optionally filtered by level
func (r *GormOperationLogRepository) GetLogs(ctx context.Context, operationID string, limit int, level *string) ([]OperationLogEntry, error) {
	var models []OperationLogModel

	query := r.db.WithContext(ctx).Where("operation_id = ?", operationID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	query = query.Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]OperationLogEntry, len(models))
	for i, m := range models {
		var metadata map[string]interface{}
		if m.Metadata != "" {
			if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = OperationLogEntry{
			ID:          m.ID,
			OperationID: m.OperationID,
			Agent:       m.Agent,
			Timestamp:   m.Timestamp,
			Level:       m.Level,
			Message:     m.Message,
			Metadata:    metadata,
		}
	}
	return entries, nil
}
