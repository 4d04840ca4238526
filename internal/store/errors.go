package store

import (
	"github.com/guardiandrive/guardiand/internal/errors"
)

// Sentinel errors, re-exported so callers can check store failures
// without importing internal/errors directly.
var (
	ErrNotFound      = errors.ErrNotFound
	ErrAlertNotFound = errors.ErrAlertNotFound
	ErrRunNotFound   = errors.ErrRunNotFound
	ErrDatabase      = errors.ErrDatabase
)
