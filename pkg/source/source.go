// Package source provides the version-scoped update sources that feed the
// history store: each source folds one version's worth of API surface data
// into a store, tagged with the version stamp(s) it carries.
package source

import "github.com/odvcencio/apitrail/pkg/history"

// Source folds one version's data into a history store. Every name a
// source passes is already in canonical signature form; the store places no
// constraint on where the data came from.
//
// Sources must be applied in strictly increasing version order, oldest
// first. The per-element merge tolerates out-of-order observations, but the
// store-level contract is sequential and ascending.
type Source interface {
	Apply(h *history.History) error
}
