package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

// ReaderOption configures a SqliteSampleReader with filtering criteria
type ReaderOption func(*SqliteSampleReader)

// WithMinFreq excludes samples below f MHz
func WithMinFreq(f float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.minFreq = &f
	}
}

// WithMaxFreq excludes samples above f MHz
func WithMaxFreq(f float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.maxFreq = &f
	}
}

// WithFreqRange is WithMinFreq and WithMaxFreq combined
func WithFreqRange(minFreq, maxFreq float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.minFreq = &minFreq
		r.maxFreq = &maxFreq
	}
}

// WithTimeRange keeps samples whose run offset, in seconds, lies in
// [start, end]
func WithTimeRange(start, end float64) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.startTime = &start
		r.endTime = &end
	}
}

// WithSources keeps only samples of the given sources
func WithSources(sources ...signal.Source) ReaderOption {
	return func(r *SqliteSampleReader) {
		r.sources = append(r.sources, sources...)
	}
}

// SqliteSampleReader iterates over the stored samples of a session
type SqliteSampleReader struct {
	db *sql.DB

	sessionID int64
	session   *Session

	startTime *float64 // Optional start of time range filter, seconds
	endTime   *float64 // Optional end of time range filter, seconds
	minFreq   *float64 // Optional minimum frequency filter, MHz
	maxFreq   *float64 // Optional maximum frequency filter, MHz
	sources   []signal.Source

	current signal.Sample
	rows    *sql.Rows
	err     error
}

func newSqliteSampleReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*SqliteSampleReader, error) {
	sr := &SqliteSampleReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(sr)
	}
	if err := sr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return sr, nil
}

func (sr *SqliteSampleReader) init(ctx context.Context) error {
	if sr.db == nil {
		return errors.New("database connection required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "checking filters", fn: sr.checkFilters},
		{msg: "loading session", fn: sr.loadSession},
		{msg: "initializing query", fn: sr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (sr *SqliteSampleReader) checkFilters(context.Context) error {
	if sr.startTime != nil && sr.endTime != nil && *sr.startTime > *sr.endTime {
		return fmt.Errorf("%w: start time %v is after end time %v", ErrInvalidFilter, *sr.startTime, *sr.endTime)
	}
	if sr.minFreq != nil && sr.maxFreq != nil && *sr.minFreq > *sr.maxFreq {
		return fmt.Errorf("%w: min frequency %v is greater than max frequency %v", ErrInvalidFilter, *sr.minFreq, *sr.maxFreq)
	}
	for _, source := range sr.sources {
		if !source.Valid() {
			return fmt.Errorf("%w: unknown source %q", ErrInvalidFilter, source)
		}
	}
	return nil
}

func (sr *SqliteSampleReader) loadSession(ctx context.Context) (err error) {
	sr.session, err = loadSession(ctx, sr.db, sr.sessionID)
	return err
}

func (sr *SqliteSampleReader) initQuery(ctx context.Context) (err error) {
	var sb strings.Builder
	sb.WriteString(selectSamplesSQL)
	args := []any{sr.sessionID}

	filter := func(clause string, v *float64) {
		if v != nil {
			sb.WriteString(clause)
			args = append(args, *v)
		}
	}
	filter(" AND time >= ?", sr.startTime)
	filter(" AND time <= ?", sr.endTime)
	filter(" AND frequency >= ?", sr.minFreq)
	filter(" AND frequency <= ?", sr.maxFreq)

	if len(sr.sources) > 0 {
		sb.WriteString(" AND source IN (")
		for i, source := range sr.sources {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			args = append(args, string(source))
		}
		sb.WriteString(")")
	}
	sb.WriteString(" ORDER BY seq")

	sr.rows, err = sr.db.QueryContext(ctx, sb.String(), args...)
	return err
}

func (sr *SqliteSampleReader) scanSample() (signal.Sample, error) {
	var s signal.Sample
	var signalType, source string

	err := sr.rows.Scan(
		&s.Time,
		&s.Frequency,
		&s.Bandwidth,
		&s.Strength,
		&signalType,
		&s.DopplerShift,
		&s.MultipathEffect,
		&s.Jamming,
		&source,
	)
	if err != nil {
		return signal.Sample{}, fmt.Errorf("scanning sample: %w", err)
	}

	s.Type = profile.SignalType(signalType)
	s.Source = signal.Source(source)
	return s, nil
}

// Session returns the session this reader is accessing
func (sr *SqliteSampleReader) Session() *Session {
	return sr.session
}

// Next advances the reader and reports whether a sample is available. Check
// Error after it returns false.
func (sr *SqliteSampleReader) Next(ctx context.Context) bool {
	if sr.err != nil || sr.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		sr.err = ctx.Err()
		return false
	default:
	}

	if !sr.rows.Next() {
		return false
	}

	sr.current, sr.err = sr.scanSample()
	return sr.err == nil
}

func (sr *SqliteSampleReader) Current() signal.Sample {
	return sr.current
}

func (sr *SqliteSampleReader) Error() error {
	if sr.err != nil {
		return sr.err
	}
	if sr.rows != nil {
		return sr.rows.Err()
	}
	return nil
}

func (sr *SqliteSampleReader) Close() error {
	if sr.rows != nil {
		err := sr.rows.Close()
		sr.rows = nil
		return err
	}
	return nil
}
