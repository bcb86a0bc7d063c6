package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/LapakSync/lapaksync_api/internal/models"
)

// clientColumns is the SELECT list shared by every client query. ip_whitelist
// is TEXT[] and has to go through pq.Array, so rows are scanned by hand
// instead of sqlx struct scanning.
const clientColumns = `id, client_id, name, api_key, sandbox_key, meta_business_id,
	default_catalog_id, callback_url, callback_secret, ip_whitelist, is_active,
	created_at, updated_at`

// ClientRepository is the data access layer for onboarded merchants.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row sqlx.ColScanner) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.Name,
		&c.APIKey,
		&c.SandboxKey,
		&c.MetaBusinessID,
		&c.DefaultCatalog,
		&c.CallbackURL,
		&c.CallbackSecret,
		pq.Array(&c.IPWhitelist),
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) getWhere(where string, arg any) (*models.Client, error) {
	q := fmt.Sprintf("SELECT %s FROM clients WHERE %s LIMIT 1", clientColumns, where)
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	return scanClient(stmt.QueryRowx(arg))
}

// FindByKey resolves a merchant from either of its API keys. Which key
// matched (live or sandbox) is the caller's concern; the merchant record is
// the same.
func (r *ClientRepository) FindByKey(key string) (*models.Client, error) {
	return r.getWhere("api_key = $1 OR sandbox_key = $1", key)
}

// GetByClientID finds a merchant by its public client identifier.
func (r *ClientRepository) GetByClientID(clientID string) (*models.Client, error) {
	return r.getWhere("client_id = $1", clientID)
}

// GetByID finds a merchant by numeric id.
func (r *ClientRepository) GetByID(id int) (*models.Client, error) {
	return r.getWhere("id = $1", id)
}

// Create inserts a newly onboarded merchant and fills in the generated row
// identity and timestamps.
func (r *ClientRepository) Create(client *models.Client) error {
	const q = `
        INSERT INTO clients (
            client_id, name, api_key, sandbox_key, meta_business_id,
            default_catalog_id, callback_url, callback_secret, ip_whitelist, is_active
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q,
		client.ClientID,
		client.Name,
		client.APIKey,
		client.SandboxKey,
		client.MetaBusinessID,
		client.DefaultCatalog,
		client.CallbackURL,
		client.CallbackSecret,
		pq.Array(client.IPWhitelist),
		client.IsActive,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

// Update persists every mutable merchant field, key material included, and
// refreshes the updated_at stamp on the struct.
func (r *ClientRepository) Update(client *models.Client) error {
	const q = `
        UPDATE clients SET
            name = $2, api_key = $3, sandbox_key = $4, meta_business_id = $5,
            default_catalog_id = $6, callback_url = $7, callback_secret = $8,
            ip_whitelist = $9, is_active = $10, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	return r.db.QueryRowx(q,
		client.ID,
		client.Name,
		client.APIKey,
		client.SandboxKey,
		client.MetaBusinessID,
		client.DefaultCatalog,
		client.CallbackURL,
		client.CallbackSecret,
		pq.Array(client.IPWhitelist),
		client.IsActive,
	).Scan(&client.UpdatedAt)
}

// List returns all merchants, newest first.
func (r *ClientRepository) List() ([]*models.Client, error) {
	q := fmt.Sprintf("SELECT %s FROM clients ORDER BY created_at DESC", clientColumns)
	rows, err := r.db.Queryx(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// IsNotFound reports whether a repository error means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
