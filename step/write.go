package step

import (
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
)

// WriteCSV implements `write_csv`: the table space is unchanged; a sink
// plan is appended (§3, §4.2).
type WriteCSV struct {
	Table     string
	File      string
	Delimiter rune
	Columns   []string
}

func (w *WriteCSV) Tag() string { return "write_csv" }

func (w *WriteCSV) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(w.Table)
	if err != nil {
		return nil, nil, err
	}
	path, err := settings.ResolvePath(w.File)
	if err != nil {
		return nil, nil, err
	}
	sink := plan.NewSink(node, plan.SinkCSV, path, w.Columns, w.Delimiter)
	return space, []*plan.Sink{sink}, nil
}

// WriteNDJSON implements `write_ndjson`.
type WriteNDJSON struct {
	Table   string
	File    string
	Columns []string
}

func (w *WriteNDJSON) Tag() string { return "write_ndjson" }

func (w *WriteNDJSON) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(w.Table)
	if err != nil {
		return nil, nil, err
	}
	path, err := settings.ResolvePath(w.File)
	if err != nil {
		return nil, nil, err
	}
	sink := plan.NewSink(node, plan.SinkNDJSON, path, w.Columns, 0)
	return space, []*plan.Sink{sink}, nil
}

// WriteJSON implements `write_json`.
type WriteJSON struct {
	Table   string
	File    string
	Columns []string
}

func (w *WriteJSON) Tag() string { return "write_json" }

func (w *WriteJSON) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(w.Table)
	if err != nil {
		return nil, nil, err
	}
	path, err := settings.ResolvePath(w.File)
	if err != nil {
		return nil, nil, err
	}
	sink := plan.NewSink(node, plan.SinkJSON, path, w.Columns, 0)
	return space, []*plan.Sink{sink}, nil
}
