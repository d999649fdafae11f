package service

import "errors"

// Sentinel kinds for service errors. These allow errors.Is/As from callers.
var (
	ErrNoStore        = errors.New("no store configured")
	ErrPlayerNotRated = errors.New("player has no eligible matches")
)
