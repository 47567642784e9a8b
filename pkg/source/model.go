package source

import "github.com/odvcencio/apitrail/pkg/history"

// ModelSource folds an already-structured API surface model, for producers
// that build observations in memory (a source-derived AST walker, tests,
// or another history being replayed).
type ModelSource struct {
	Stamp   history.Stamp
	Classes []history.Observation
}

// NewModelSource returns a source folding the given observations under one
// stamp.
func NewModelSource(stamp history.Stamp, classes []history.Observation) *ModelSource {
	return &ModelSource{Stamp: stamp, Classes: classes}
}

// Apply folds every observation into h.
func (s *ModelSource) Apply(h *history.History) error {
	for _, obs := range s.Classes {
		h.Fold(s.Stamp, obs)
	}
	return nil
}
