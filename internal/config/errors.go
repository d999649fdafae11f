package config

import "errors"

// Sentinel kinds for configuration errors. Callers use errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
