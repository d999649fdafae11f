package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed = errors.New("store closed")
	ErrQuery  = errors.New("store query failed")
)
