package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken     = errors.New("INVALID_TOKEN")
	ErrInvalidClient    = errors.New("INVALID_CLIENT")
	ErrInvalidIP        = errors.New("INVALID_IP")
	ErrMissingMetaToken = errors.New("MISSING_META_TOKEN")
	ErrPushNotFound     = errors.New("PUSH_NOT_FOUND")
	ErrClientNotFound   = errors.New("CLIENT_NOT_FOUND")
)
