// Package workflow ties the tagged step algebra together into a runnable
// document: the wire JSON envelope `{"workflow": [...]}` (§6) and the
// fold-driver that threads a table space through each step in order and
// materializes every sink plan once, at the end (§4.3).
package workflow

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/step"
	"github.com/milaboratory/ptabler/tablespace"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrMalformed is returned when the top-level workflow document doesn't
// decode to the expected envelope shape.
var ErrMalformed = errors.NewKind("malformed workflow document: %s")

// Workflow is a decoded, ordered list of steps (§4.1, §6).
type Workflow struct {
	Steps []step.Step
}

type document struct {
	Workflow []json.RawMessage `json:"workflow"`
}

// Decode parses a workflow document, recognizing the `{"workflow": [...]}`
// envelope and decoding each entry via the step package's tag dispatch.
func Decode(raw []byte) (*Workflow, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrMalformed.New(err.Error())
	}
	steps, err := step.DecodeAll(doc.Workflow)
	if err != nil {
		return nil, err
	}
	return &Workflow{Steps: steps}, nil
}

// Fold threads the workflow's steps over an initially empty table space
// (§4.3): each step receives the space left by its predecessor and
// returns a replacement space plus any sink plans it emitted. No step
// performs I/O directly (§8 laziness) — Execute only builds plan.Node
// values; Fold itself never scans a file or writes a sink. It returns the
// final table space and the full ordered list of sink plans, leaving the
// choice of when (or whether) to materialize them to the caller.
func Fold(wf *Workflow, settings step.Settings) (tablespace.Space, []*plan.Sink, error) {
	space := tablespace.Empty()
	var sinks []*plan.Sink

	for i, s := range wf.Steps {
		log := logrus.WithFields(logrus.Fields{
			"step": i,
			"tag":  s.Tag(),
		})
		log.Debug("executing step")

		next, emitted, err := s.Execute(space, settings)
		if err != nil {
			log.WithError(err).Error("step failed")
			return nil, nil, err
		}
		space = next
		sinks = append(sinks, emitted...)
	}
	return space, sinks, nil
}

// MaterializeAll collects and writes every sink in sinks, in order. This is
// the first point at which any I/O actually happens (§4.3, §8 laziness);
// a caller that only wants particular tables may instead call
// space.Get(name).Collect(ctx) directly and skip this entirely.
func MaterializeAll(ctx context.Context, sinks []*plan.Sink) error {
	sqlCtx := sql.NewContext(ctx)
	logrus.WithField("sinks", len(sinks)).Debug("materializing sinks")
	for i, sink := range sinks {
		log := logrus.WithFields(logrus.Fields{
			"sink": i,
			"path": sink.Path,
		})
		if err := sink.Materialize(sqlCtx); err != nil {
			log.WithError(err).Error("sink materialization failed")
			return err
		}
		log.Debug("sink written")
	}
	return nil
}

// Run is the eager convenience path (§4.3: "a single engine-level batch
// collect is preferred"): fold the whole workflow, then materialize every
// sink it produced.
func Run(ctx context.Context, wf *Workflow, settings step.Settings) error {
	_, sinks, err := Fold(wf, settings)
	if err != nil {
		return err
	}
	return MaterializeAll(ctx, sinks)
}
