package engine

import "errors"

// Error kinds surfaced by the engine. Operations wrap these with context
// so callers can branch with errors.Is.
var (
	ErrSchemaMismatch     = errors.New("document does not match collection schema")
	ErrTimestampFormat    = errors.New("invalid timestamp")
	ErrUpdateTypeMismatch = errors.New("update operator applied to wrong type")
	ErrChunkParse         = errors.New("could not parse chunk file")
	ErrArgumentShape      = errors.New("argument has the wrong shape")
	ErrImmutableID        = errors.New("_id cannot be modified")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrUnknownDatabase    = errors.New("unknown database")
	ErrUnknownMethod      = errors.New("unknown method")
)
