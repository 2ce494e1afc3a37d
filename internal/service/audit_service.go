package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
	"github.com/studika/gradebook-backend/internal/model"
)

// AuditStore is the audit trail persistence needed by AuditService.
type AuditStore interface {
	Insert(ctx context.Context, e *model.AuditEntry) error
	List(ctx context.Context, filter model.AuditFilter, page, perPage int) ([]model.AuditEntry, int, error)
}

// AuditService appends immutable audit entries for every state-changing
// action. Writes are best-effort: a failed audit append never rolls back
// the primary mutation, it is only logged.
type AuditService struct {
	store AuditStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewAuditService creates a new AuditService. rdb may be nil, in which case
// every entry is inserted directly instead of queued.
func NewAuditService(store AuditStore, rdb *redis.Client, log zerolog.Logger) *AuditService {
	return &AuditService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "audit").Logger(),
	}
}

// Record appends an audit entry for an action performed by actor. Snapshots
// are serialized as opaque JSON; pass nil to omit them (e.g. logout).
// The entry is queued for batched persistence and published to the live
// compliance channel; on queue failure it falls back to a direct insert.
func (s *AuditService) Record(ctx context.Context, actor *model.Principal, action, tableName, recordID string, before, after interface{}, address string) {
	entry := &model.AuditEntry{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		TableName: tableName,
		RecordID:  recordID,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}

	var err error
	if before != nil {
		if entry.Before, err = json.Marshal(before); err != nil {
			s.log.Warn().Err(err).Str("action", action).Msg("Audit before-snapshot marshal failed")
		}
	}
	if after != nil {
		if entry.After, err = json.Marshal(after); err != nil {
			s.log.Warn().Err(err).Str("action", action).Msg("Audit after-snapshot marshal failed")
		}
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("Audit entry marshal failed")
		return
	}

	queued := false
	if s.rdb != nil {
		if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, raw).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Audit queue push failed, inserting directly")
		} else {
			queued = true
		}
		// Live compliance stream; subscribers may come and go freely.
		if err := s.rdb.Publish(ctx, config.CacheKey.AuditChannel(), raw).Err(); err != nil {
			s.log.Debug().Err(err).Msg("Audit publish failed")
		}
	}

	if !queued {
		if err := s.store.Insert(ctx, entry); err != nil {
			s.log.Warn().Err(err).
				Str("action", action).
				Str("table", tableName).
				Msg("Audit insert failed, entry lost")
		}
	}
}

// List retrieves a filtered, paginated slice of the audit trail.
func (s *AuditService) List(ctx context.Context, filter model.AuditFilter, page, perPage int) ([]model.AuditEntry, int, error) {
	return s.store.List(ctx, filter, page, perPage)
}
