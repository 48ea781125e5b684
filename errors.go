package leadgenius

import "errors"

var (
	// Wiring errors.
	ErrNoExecutor = errors.New("leadgenius: no executor configured")
	ErrNoStore    = errors.New("leadgenius: no result store configured")

	// Configuration errors.
	ErrInvalidConcurrency = errors.New("leadgenius: max concurrency must be at least 1")
	ErrInvalidSpawnDelay  = errors.New("leadgenius: spawn delay must not be negative")
	ErrInvalidTimeout     = errors.New("leadgenius: task timeout must not be negative")
	ErrInvalidMaxRetries  = errors.New("leadgenius: max retries must not be negative")

	// Task list errors.
	ErrDuplicateTaskID = errors.New("leadgenius: duplicate task id")

	// Store errors.
	ErrRecordNotFound = errors.New("leadgenius: record not found")
	ErrStoreClosed    = errors.New("leadgenius: store closed")
)
