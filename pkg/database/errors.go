package database

import "errors"

// ErrNotReady marks connectivity failures surfaced by Ping; the
// readiness probe reports it until the pool reaches the server.
var ErrNotReady = errors.New("database not ready")
