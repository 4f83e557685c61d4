// Package loader reads transaction files and decodes every row into a
// ledger.Transaction.
//
// A transaction file is CSV with a header row naming the columns type,
// client, tx and amount (in any order; amount may be omitted when the file
// only holds administrative rows):
//
//	type,       client, tx, amount
//	deposit,         1,  1,    1.5
//	withdrawal,      1,  2,      1
//	dispute,         1,  1,
//
// Whitespace around fields is ignored and rows may leave out trailing empty
// fields. Rows that cannot be decoded are reported as *RecordError values to
// the configured error handler and skipped; they never abort a load. Only
// failures to read the source itself, or a header without the required
// columns, are returned as errors.
//
// Example usage:
//
//	ldr := loader.New(loader.WithErrorHandler(func(err error) {
//	    log.Println(err)
//	}))
//	stats, err := ldr.Load(ctx, "transactions.csv", func(ctx context.Context, rec loader.Record) error {
//	    _, _ = l.Execute(rec.Tx)
//	    return nil
//	})
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/simledger/ledger"
	"github.com/robinvdvleuten/simledger/telemetry"
)

// Record is a decoded transaction together with the position of its row.
type Record struct {
	Pos Position
	Tx  ledger.Transaction
}

// Handler is called for every decoded row, in file order. Returning an
// error stops the load and returns that error.
type Handler func(ctx context.Context, rec Record) error

// Stats counts the rows seen during a load, excluding the header.
type Stats struct {
	Rows    int
	Decoded int
	Skipped int
}

// Loader streams transaction files.
//
// Configure the loader using functional options passed to New:
//
//	ldr := New(WithErrorHandler(report))
type Loader struct {
	onError func(error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithErrorHandler sets the function receiving a *RecordError for every
// skipped row. Without one, malformed rows are skipped silently.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Loader) {
		l.onError = fn
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		onError: func(error) {},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load opens filename and streams its rows to fn.
func (l *Loader) Load(ctx context.Context, filename string, fn Handler) (Stats, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	return l.LoadReader(ctx, filename, f, fn)
}

// LoadBytes streams rows from data; filename is only used in positions.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte, fn Handler) (Stats, error) {
	return l.LoadReader(ctx, filename, bytes.NewReader(data), fn)
}

// LoadReader streams rows from r; filename is only used in positions.
func (l *Loader) LoadReader(ctx context.Context, filename string, r io.Reader, fn Handler) (Stats, error) {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("loader.load %s", filepath.Base(filename)))
	defer timer.End()

	var stats Stats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read header of %s: %w", filename, err)
	}

	cols, err := parseHeader(header)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", filename, err)
	}

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return stats, fmt.Errorf("failed to read %s: %w", filename, err)
			}

			// A malformed CSV row is skipped like any other undecodable row.
			stats.Rows++
			l.skip(ctx, &stats, &RecordError{
				Pos: Position{Filename: filename, Line: parseErr.Line, Column: parseErr.Column},
				Err: parseErr.Err,
			})
			continue
		}

		stats.Rows++

		line, _ := reader.FieldPos(0)
		pos := Position{Filename: filename, Line: line}

		tx, err := Decode(cols.fields(record))
		if err != nil {
			var recErr *RecordError
			if errors.As(err, &recErr) {
				recErr.Pos = fieldPosition(reader, filename, line, cols.index(recErr.Field), len(record))
			}
			l.skip(ctx, &stats, err)
			continue
		}

		stats.Decoded++
		telemetry.Count(ctx, "rows.decoded", 1)

		if err := fn(ctx, Record{Pos: pos, Tx: tx}); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (l *Loader) skip(ctx context.Context, stats *Stats, err error) {
	stats.Skipped++
	telemetry.Count(ctx, "rows.skipped", 1)
	l.onError(err)
}

// fieldPosition returns the position of field idx of the current record,
// falling back to the start of the row when the field is absent.
func fieldPosition(reader *csv.Reader, filename string, line, idx, n int) Position {
	if idx < 0 || idx >= n {
		return Position{Filename: filename, Line: line}
	}
	fieldLine, column := reader.FieldPos(idx)
	return Position{Filename: filename, Line: fieldLine, Column: column}
}
