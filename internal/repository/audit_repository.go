package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studika/gradebook-backend/internal/model"
)

// AuditRepository handles the append-only audit trail. Rows are only ever
// inserted; retention is an external concern.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Insert appends a single audit entry.
func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditEntry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO audit_entries (actor_id, actor_role, action, table_name, record_id, before_json, after_json, address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		e.ActorID, e.ActorRole, e.Action, e.TableName, e.RecordID, e.Before, e.After, e.Address, e.CreatedAt,
	).Scan(&e.ID)
}

// BulkInsert appends a batch of audit entries in a single round trip.
func (r *AuditRepository) BulkInsert(ctx context.Context, entries []*model.AuditEntry) error {
	n := len(entries)
	if n == 0 {
		return nil
	}

	actorIDs := make([]int, 0, n)
	actorRoles := make([]string, 0, n)
	actions := make([]string, 0, n)
	tableNames := make([]string, 0, n)
	recordIDs := make([]string, 0, n)
	befores := make([]json.RawMessage, 0, n)
	afters := make([]json.RawMessage, 0, n)
	addresses := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, e := range entries {
		actorIDs = append(actorIDs, e.ActorID)
		actorRoles = append(actorRoles, string(e.ActorRole))
		actions = append(actions, e.Action)
		tableNames = append(tableNames, e.TableName)
		recordIDs = append(recordIDs, e.RecordID)
		befores = append(befores, e.Before)
		afters = append(afters, e.After)
		addresses = append(addresses, e.Address)
		createdAts = append(createdAts, e.CreatedAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_entries (actor_id, actor_role, action, table_name, record_id, before_json, after_json, address, created_at)
		 SELECT * FROM UNNEST(
			$1::int[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::jsonb[],
			$7::jsonb[],
			$8::text[],
			$9::timestamptz[]
		 )`,
		actorIDs, actorRoles, actions, tableNames, recordIDs, befores, afters, addresses, createdAts)
	return err
}

// List retrieves a filtered, paginated slice of the audit trail, newest
// first, along with the total match count.
func (r *AuditRepository) List(ctx context.Context, filter model.AuditFilter, page, perPage int) ([]model.AuditEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	where := ` WHERE ($1 = 0 OR actor_id = $1)
	           AND ($2 = '' OR action = $2)
	           AND ($3 = '' OR table_name = $3)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_entries`+where,
		filter.ActorID, filter.Action, filter.TableName).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, actor_role, action, table_name, record_id, before_json, after_json, address, created_at
		 FROM audit_entries`+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT $4 OFFSET $5`,
		filter.ActorID, filter.Action, filter.TableName, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.TableName, &e.RecordID, &e.Before, &e.After, &e.Address, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
