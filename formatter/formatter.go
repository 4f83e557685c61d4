// Package formatter writes the final account summary of a replay.
//
// Two formats are supported. FormatCSV is the machine-readable summary:
//
//	client,available,held,total,locked
//	1,1.5000,0.0000,1.5000,false
//
// FormatTable aligns the same columns for reading in a terminal and can be
// styled with output.Styles.
package formatter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/simledger/ledger"
	"github.com/robinvdvleuten/simledger/output"
	"github.com/robinvdvleuten/simledger/telemetry"
)

// Format selects the summary layout.
type Format string

const (
	// FormatCSV writes comma separated values with a header row.
	FormatCSV Format = "csv"
	// FormatTable writes aligned columns.
	FormatTable Format = "table"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTable:
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q, expected csv or table", s)
}

// Header holds the column names of the summary.
var Header = []string{"client", "available", "held", "total", "locked"}

// columnGap is the number of spaces between table columns.
const columnGap = 2

// Formatter writes account snapshots.
type Formatter struct {
	// Format is the output layout. Defaults to FormatCSV.
	Format Format

	// Styles colours table output. Nil writes plain text. CSV output is
	// never styled.
	Styles *output.Styles
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithFormat sets the output layout.
func WithFormat(format Format) Option {
	return func(f *Formatter) {
		f.Format = format
	}
}

// WithStyles enables styled table output.
func WithStyles(styles *output.Styles) Option {
	return func(f *Formatter) {
		f.Styles = styles
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		Format: FormatCSV,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Write writes snapshots to w in the order given.
func (f *Formatter) Write(ctx context.Context, snapshots []ledger.Snapshot, w io.Writer) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("formatter.write (%d accounts)", len(snapshots)))
	defer timer.End()

	switch f.Format {
	case FormatCSV, "":
		return f.writeCSV(snapshots, w)
	case FormatTable:
		return f.writeTable(snapshots, w)
	default:
		return fmt.Errorf("unknown format %q", f.Format)
	}
}

// Row returns the summary fields of a snapshot.
func Row(s ledger.Snapshot) []string {
	return []string{
		strconv.FormatUint(uint64(s.ClientID), 10),
		s.Available.String(),
		s.Held.String(),
		s.Total.String(),
		strconv.FormatBool(s.Locked),
	}
}

func (f *Formatter) writeCSV(snapshots []ledger.Snapshot, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range snapshots {
		if err := cw.Write(Row(s)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (f *Formatter) writeTable(snapshots []ledger.Snapshot, w io.Writer) error {
	rows := make([][]string, len(snapshots))
	widths := make([]int, len(Header))

	for i, name := range Header {
		widths[i] = runewidth.StringWidth(name)
	}
	for i, s := range snapshots {
		rows[i] = Row(s)
		for j, cell := range rows[i] {
			if cw := runewidth.StringWidth(cell); cw > widths[j] {
				widths[j] = cw
			}
		}
	}

	header := make([]string, len(Header))
	for i, name := range Header {
		header[i] = f.style(pad(name, widths[i], i), func(s string) string { return f.Styles.Keyword(s) })
	}
	if err := writeLine(w, header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = f.styleCell(snapshots[i], j, pad(cell, widths[j], j))
		}
		if err := writeLine(w, cells); err != nil {
			return err
		}
	}

	return nil
}

// pad aligns the client and money columns right and the locked column left.
func pad(cell string, width, column int) string {
	if column == len(Header)-1 {
		return runewidth.FillRight(cell, width)
	}
	return runewidth.FillLeft(cell, width)
}

func (f *Formatter) style(cell string, fn func(string) string) string {
	if f.Styles == nil {
		return cell
	}
	return fn(cell)
}

func (f *Formatter) styleCell(s ledger.Snapshot, column int, cell string) string {
	if f.Styles == nil {
		return cell
	}

	switch column {
	case 0:
		return f.Styles.Client(cell)
	case 1, 2, 3:
		amounts := []ledger.Amount{s.Available, s.Held, s.Total}
		if amounts[column-1].IsNegative() {
			return f.Styles.NegativeAmount(cell)
		}
		return f.Styles.Amount(cell)
	default:
		if s.Locked {
			return f.Styles.Locked(cell)
		}
		return f.Styles.Dim(cell)
	}
}

func writeLine(w io.Writer, cells []string) error {
	line := strings.TrimRight(strings.Join(cells, strings.Repeat(" ", columnGap)), " ")
	_, err := fmt.Fprintln(w, line)
	return err
}
