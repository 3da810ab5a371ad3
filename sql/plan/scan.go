package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
)

// ScanCSV is the `read_csv` plan leaf.
type ScanCSV struct {
	Options memory.ScanCSVOptions
}

// NewScanCSV constructs a CSV scan plan leaf.
func NewScanCSV(opts memory.ScanCSVOptions) *ScanCSV { return &ScanCSV{Options: opts} }

func (s *ScanCSV) Schema(ctx *sql.Context) (sql.Schema, error) {
	return memory.PeekCSVSchema(s.Options)
}

func (s *ScanCSV) Collect(ctx *sql.Context) (*memory.Table, error) {
	return memory.ScanCSV(s.Options)
}

// ScanNDJSON is the `read_ndjson` plan leaf.
type ScanNDJSON struct {
	Options memory.ScanNDJSONOptions
}

// NewScanNDJSON constructs an NDJSON scan plan leaf.
func NewScanNDJSON(opts memory.ScanNDJSONOptions) *ScanNDJSON { return &ScanNDJSON{Options: opts} }

func (s *ScanNDJSON) Schema(ctx *sql.Context) (sql.Schema, error) {
	return memory.PeekNDJSONSchema(s.Options)
}

func (s *ScanNDJSON) Collect(ctx *sql.Context) (*memory.Table, error) {
	return memory.ScanNDJSON(s.Options)
}
