package storage

import (
	"context"
	"errors"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

var (
	// ErrSessionNotFound is returned when no session has the requested ID
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidFilter is returned by ReadSamples for an inverted range filter
	ErrInvalidFilter = errors.New("invalid filter")
)

// Store persists synthesis runs and their samples. All write operations are
// atomic.
type Store interface {
	// CreateSession records a new run and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - droneID: Identifier of the drone profile the run draws from
	//   - config: Optional run configuration. Can be string, []byte, or JSON-serializable object
	CreateSession(ctx context.Context, droneID string, config any) (sessionID int64, err error)

	// Session retrieves a session by its ID. A missing session yields
	// ErrSessionNotFound.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions returns all sessions ordered by start time.
	Sessions(ctx context.Context) ([]*Session, error)

	// StoreSamples appends samples to a session in a single transaction,
	// preserving their order after any samples stored earlier.
	StoreSamples(ctx context.Context, sessionID int64, samples []signal.Sample) error

	// ReadSamples opens a reader over the stored samples of a session in the
	// order they were stored. The reader must be closed after use.
	ReadSamples(ctx context.Context, sessionID int64, opts ...ReaderOption) (*SqliteSampleReader, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}
