package models

import (
	"encoding/json"
	"time"
)

// CallbackLog stores outgoing webhook attempts to merchant systems.
type CallbackLog struct {
	ID           int             `db:"id"`
	PushID       int             `db:"push_id"`
	ClientID     int             `db:"client_id"`
	Event        string          `db:"event"`
	Payload      json.RawMessage `db:"payload"`
	Attempt      int             `db:"attempt"`
	HTTPStatus   *int            `db:"http_status"`
	ResponseBody *string         `db:"response_body"`
	IsDelivered  bool            `db:"is_delivered"`
	CreatedAt    time.Time       `db:"created_at"`
	NextRetryAt  *time.Time      `db:"next_retry_at"`
}
