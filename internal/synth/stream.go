package synth

import (
	"context"
	"errors"
	"fmt"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

// ErrEmptyRun stops a stream whose runs keep producing no samples
var ErrEmptyRun = errors.New("run produced no samples")

// MaxEmptyRuns bounds the consecutive empty runs a Stream restarts through.
// A run may legitimately come out empty, e.g. a short run with a signal type
// filter, so one empty run is not fatal. A run that can never yield a sample
// still stops the stream once the bound is hit.
const MaxEmptyRuns = 100

// SampleReader is a pull iterator over samples
type SampleReader interface {
	// Next advances the iterator and reports whether a sample is available.
	Next(context.Context) bool

	// Current returns the sample Next advanced to.
	Current() signal.Sample

	// Error returns the error that stopped the iteration, if any.
	Error() error
}

// RunFunc produces the samples of one complete run
type RunFunc func(ctx context.Context) ([]signal.Sample, error)

// BatchReader iterates over one completed run. Next returning false marks
// the end of the run.
type BatchReader struct {
	samples []signal.Sample
	pos     int
	current signal.Sample
	err     error
}

// NewBatchReader creates a reader over samples
func NewBatchReader(samples []signal.Sample) *BatchReader {
	return &BatchReader{samples: samples}
}

func (r *BatchReader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}
	if r.pos >= len(r.samples) {
		return false
	}

	r.current = r.samples[r.pos]
	r.pos++
	return true
}

func (r *BatchReader) Current() signal.Sample {
	return r.current
}

func (r *BatchReader) Error() error {
	return r.err
}

// Stream is an endless SampleReader: when a run is exhausted it starts a new
// one with the same parameters. Empty runs are skipped. It only stops on a
// run error, after MaxEmptyRuns empty runs in a row, or when ctx is done.
type Stream struct {
	run     RunFunc
	reader  *BatchReader
	runs    int
	empty   int
	current signal.Sample
	err     error
}

// NewStream creates a stream over runs produced by run
func NewStream(run RunFunc) *Stream {
	return &Stream{run: run}
}

// Stream returns an endless stream of the generator's runs
func (g *Generator) Stream() *Stream {
	return NewStream(g.Run)
}

func (s *Stream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}

	for {
		if s.reader != nil {
			if s.reader.Next(ctx) {
				s.current = s.reader.Current()
				return true
			}
			if err := s.reader.Error(); err != nil {
				s.err = err
				return false
			}
		}

		if err := ctx.Err(); err != nil {
			s.err = err
			return false
		}

		batch, err := s.run(ctx)
		if err != nil {
			s.err = fmt.Errorf("run %d: %w", s.runs+1, err)
			return false
		}
		s.runs++

		if len(batch) == 0 {
			s.reader = nil
			if s.empty++; s.empty >= MaxEmptyRuns {
				s.err = fmt.Errorf("run %d: %d runs in a row: %w", s.runs, s.empty, ErrEmptyRun)
				return false
			}
			continue
		}
		s.empty = 0
		s.reader = NewBatchReader(batch)
	}
}

func (s *Stream) Current() signal.Sample {
	return s.current
}

func (s *Stream) Error() error {
	return s.err
}

// Runs returns the number of runs started so far
func (s *Stream) Runs() int {
	return s.runs
}
