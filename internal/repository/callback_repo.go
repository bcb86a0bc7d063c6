package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/LapakSync/lapaksync_api/internal/models"
)

// claimLease is how far ClaimPending pushes next_retry_at for the rows it
// hands out. A worker that dies mid-delivery loses its claim after this
// window and another worker picks the row up.
const claimLease = "2 minutes"

// CallbackRepository provides access to the outgoing webhook log table.
type CallbackRepository struct {
	db *sqlx.DB
}

// NewCallbackRepository creates a new CallbackRepository.
func NewCallbackRepository(db *sqlx.DB) *CallbackRepository {
	return &CallbackRepository{db: db}
}

// Create inserts a new callback log row.
func (r *CallbackRepository) Create(log *models.CallbackLog) error {
	const q = `
        INSERT INTO callback_logs (
            push_id, client_id, event, payload, attempt, http_status, response_body, is_delivered, created_at, next_retry_at
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,NOW(),$9
        )`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(
		log.PushID,
		log.ClientID,
		log.Event,
		log.Payload,
		log.Attempt,
		log.HTTPStatus,
		log.ResponseBody,
		log.IsDelivered,
		log.NextRetryAt,
	)
	return err
}

// Update records the outcome of a delivery attempt.
func (r *CallbackRepository) Update(log *models.CallbackLog) error {
	const q = `
        UPDATE callback_logs SET
            attempt = $2,
            http_status = $3,
            response_body = $4,
            is_delivered = $5,
            next_retry_at = $6
        WHERE id = $1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(
		log.ID,
		log.Attempt,
		log.HTTPStatus,
		log.ResponseBody,
		log.IsDelivered,
		log.NextRetryAt,
	)
	return err
}

// ClaimPending selects up to limit undelivered callbacks that are due and
// leases them to the caller. The select and the lease bump run in one
// transaction with SKIP LOCKED, so two workers sweeping at the same time
// never claim the same row; delivery then happens outside any lock.
func (r *CallbackRepository) ClaimPending(limit int) ([]models.CallbackLog, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const selectQ = `
        SELECT * FROM callback_logs
        WHERE is_delivered = false
          AND next_retry_at <= NOW()
          AND attempt < 5
        ORDER BY next_retry_at ASC
        LIMIT $1
        FOR UPDATE SKIP LOCKED`
	var logs []models.CallbackLog
	if err := tx.Select(&logs, selectQ, limit); err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]int, len(logs))
	for i, cb := range logs {
		ids[i] = cb.ID
	}
	const leaseQ = `
        UPDATE callback_logs
        SET next_retry_at = NOW() + interval '` + claimLease + `'
        WHERE id = ANY($1)`
	if _, err := tx.Exec(leaseQ, pq.Array(ids)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return logs, nil
}
