package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
)

// SinkFormat names the output format of a Sink plan.
type SinkFormat int

const (
	SinkCSV SinkFormat = iota
	SinkNDJSON
	SinkJSON
)

// Sink is the terminal `write_*` plan (§3, glossary: "sink plan"): a
// child node plus output options. The table space is never modified by a
// Sink; the driver collects every emitted Sink once, at the end of the
// fold (§4.3).
type Sink struct {
	Child   Node
	Format  SinkFormat
	Path    string
	Columns []string
	// Delimiter is only meaningful for SinkFormat == SinkCSV.
	Delimiter rune
}

// NewSink builds a sink plan node.
func NewSink(child Node, format SinkFormat, path string, columns []string, delimiter rune) *Sink {
	return &Sink{Child: child, Format: format, Path: path, Columns: columns, Delimiter: delimiter}
}

// Materialize collects Child and writes it to Path in Format.
func (s *Sink) Materialize(ctx *sql.Context) error {
	t, err := s.Child.Collect(ctx)
	if err != nil {
		return err
	}
	switch s.Format {
	case SinkCSV:
		return memory.SinkCSV(t, memory.SinkCSVOptions{Path: s.Path, Delimiter: s.Delimiter, Columns: s.Columns})
	case SinkNDJSON:
		return memory.SinkNDJSON(t, memory.SinkNDJSONOptions{Path: s.Path, Columns: s.Columns})
	case SinkJSON:
		return memory.SinkJSON(t, memory.SinkJSONOptions{Path: s.Path, Columns: s.Columns})
	default:
		return sql.ErrInvalidExpression.New("sink", "unknown format")
	}
}
