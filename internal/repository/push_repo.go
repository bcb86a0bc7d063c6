package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/LapakSync/lapaksync_api/internal/models"
)

// PushRepository handles data access for push logs.
type PushRepository struct {
	db *sqlx.DB
}

// NewPushRepository creates a new PushRepository.
func NewPushRepository(db *sqlx.DB) *PushRepository {
	return &PushRepository{db: db}
}

// nullableJSON converts an empty raw message to nil for proper NULL handling
// in PostgreSQL.
func nullableJSON(v []byte) interface{} {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Create inserts a new push log row.
func (r *PushRepository) Create(push *models.PushLog) error {
	const q = `
        INSERT INTO push_logs (
            push_id, client_id, catalog_id, kind, is_sandbox, item_count,
            request, response, status, failed_reason, created_at
        ) VALUES (
            $1,$2,$3,$4,$5,$6,
            $7,$8,$9,$10,NOW()
        ) RETURNING id, created_at`

	return r.db.QueryRow(q,
		push.PushID, push.ClientID, push.CatalogID, push.Kind, push.IsSandbox, push.ItemCount,
		nullableJSON(push.Request), nullableJSON(push.Response), push.Status, push.FailedReason,
	).Scan(&push.ID, &push.CreatedAt)
}

// GetByPushID returns a push log by its public push id, scoped to a client.
func (r *PushRepository) GetByPushID(clientID int, pushID string) (*models.PushLog, error) {
	const q = `SELECT * FROM push_logs WHERE push_id = $1 AND client_id = $2 LIMIT 1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var p models.PushLog
	if err := stmt.Get(&p, pushID, clientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// ListByClient returns a page of a client's push logs, newest first, plus the
// total row count for pagination metadata.
func (r *PushRepository) ListByClient(clientID, page, limit int) ([]models.PushLog, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM push_logs WHERE client_id = $1`, clientID); err != nil {
		return nil, 0, fmt.Errorf("failed to count push logs: %w", err)
	}

	const q = `
        SELECT * FROM push_logs
        WHERE client_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	var pushes []models.PushLog
	if err := r.db.Select(&pushes, q, clientID, limit, offset); err != nil {
		return nil, 0, err
	}
	return pushes, total, nil
}
