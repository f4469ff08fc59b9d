package driver

import (
	"context"
	"io"

	"entiq/internal/selectopt"
	"entiq/internal/spec"
	"entiq/internal/transform"
)

// ExtractOptions configures one call to Entities: which ids to select,
// an optional batch-size override, a trace sink, and any caller-supplied
// transforms beyond the builtin registry.
type ExtractOptions struct {
	Selection  selectopt.Selection
	BatchSize  *int // nil: use Config.BatchSize; <= 0: disable batching for this call
	Trace      io.Writer
	Transforms map[string]transform.Func
}

// Record pairs an assembled entity with its originating root-table id —
// the out-of-band metadata slot spec.md §9 calls for in place of
// piggy-backing metadata onto the record itself.
type Record struct {
	ID   any
	Data map[string]any
}

// Stream lazily yields assembled Records one batch at a time. The id set
// is resolved once, eagerly, at construction (spec.md §4.6 step 1); each
// batch's rows are fully materialized and its cursor closed before
// Next returns, so Close never has to interrupt a live query.
type Stream struct {
	db        *DB
	cs        *spec.Compiled
	reg       *transform.Registry
	trace     tracer
	batchSize int

	ids []any
	pos int

	buffer []Record
	bufPos int
	done   bool
	err    error
}

// NewStream resolves the id set for opts.Selection and prepares a Stream
// over cs.Grouped. The batch size defaults to db's configured batch size
// unless opts.BatchSize overrides it.
func NewStream(ctx context.Context, db *DB, cs *spec.Compiled, opts ExtractOptions) (*Stream, error) {
	ids, err := resolveIDs(ctx, db, cs, opts.Selection)
	if err != nil {
		return nil, err
	}

	batchSize := db.batchSize
	if opts.BatchSize != nil {
		if *opts.BatchSize <= 0 {
			batchSize = 0
		} else {
			batchSize = *opts.BatchSize
		}
	}

	return &Stream{
		db:        db,
		cs:        cs,
		reg:       transform.NewRegistry(opts.Transforms),
		trace:     newTracer(opts.Trace),
		batchSize: batchSize,
		ids:       ids,
	}, nil
}

// Next advances the stream, blocking on SQL execution when a fresh batch
// is needed. It returns (zero, false, nil) once the id set is exhausted,
// and (zero, false, err) — including ctx.Err() — on cancellation or
// query failure.
func (s *Stream) Next(ctx context.Context) (Record, bool, error) {
	if s.err != nil {
		return Record{}, false, s.err
	}
	for s.bufPos >= len(s.buffer) {
		if s.done {
			return Record{}, false, nil
		}
		if err := ctx.Err(); err != nil {
			s.err = err
			s.done = true
			return Record{}, false, err
		}
		if s.pos >= len(s.ids) {
			s.done = true
			return Record{}, false, nil
		}

		end := len(s.ids)
		if s.batchSize > 0 && s.pos+s.batchSize < end {
			end = s.pos + s.batchSize
		}
		batchIDs := s.ids[s.pos:end]
		s.pos = end
		if s.pos >= len(s.ids) {
			s.done = true
		}

		s.trace.tracef("batch %d ids", len(batchIDs))
		records, err := loadBatch(ctx, s.db, s.cs, batchIDs, s.reg, s.trace)
		if err != nil {
			s.err = err
			s.done = true
			return Record{}, false, err
		}
		s.buffer = records
		s.bufPos = 0
	}

	rec := s.buffer[s.bufPos]
	s.bufPos++
	return rec, true, nil
}

// Close releases the stream. Dropping a Stream without exhausting it
// still requires calling Close.
func (s *Stream) Close() error {
	s.done = true
	s.buffer = nil
	return nil
}
