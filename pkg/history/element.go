// Package history implements the API history model and merge engine: it
// folds per-version snapshots of an API surface into one deduplicated tree
// of versioned elements and serializes that tree deterministically.
package history

import (
	"fmt"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

// Element is the atomic unit of history: one named thing (class, method,
// field, superclass edge, interface edge) tracked across versions. Method
// and field names are canonical signatures, e.g. "read([BII)I".
type Element struct {
	Name        string
	Since       apiversion.Version // earliest version observed
	LastPresent apiversion.Version // latest version observed
	// DeprecatedIn is the earliest version observed deprecated. None means
	// never deprecated; an earlier non-deprecated observation clears it.
	DeprecatedIn apiversion.Version
	// SinceExtension is the first version on the extension SDK axis,
	// 0 when the element is only versioned against the main release train.
	SinceExtension int
	// MainlineModule names the owning module for extension-tagged elements.
	MainlineModule string

	sdks string // combined axes attribute, computed by the extension overlay
}

// NewElement seeds an element from its first observation.
func NewElement(name string, v apiversion.Version, deprecated bool) *Element {
	if !v.IsValid() {
		panic(fmt.Sprintf("history: new element %q with invalid version %s", name, v))
	}
	e := &Element{Name: name, Since: v, LastPresent: v}
	if deprecated {
		e.DeprecatedIn = v
	}
	return e
}

// Observe folds one observation into the element. Since only ever decreases,
// LastPresent only ever increases, so the final values are independent of
// the order in which observations arrive. Deprecation is itself versioned:
// a non-deprecated observation earlier than the recorded deprecation means
// the element was never deprecated as far as this history is concerned.
func (e *Element) Observe(v apiversion.Version, deprecated bool) {
	if !v.IsValid() {
		panic(fmt.Sprintf("history: observe %q with invalid version %s", e.Name, v))
	}
	e.Since = apiversion.Min(e.Since, v)
	e.LastPresent = apiversion.Max(e.LastPresent, v)

	if deprecated {
		if !e.DeprecatedIn.IsValid() || v.Before(e.DeprecatedIn) {
			e.DeprecatedIn = v
		}
	} else if e.DeprecatedIn.IsValid() && v.Before(e.DeprecatedIn) {
		e.DeprecatedIn = apiversion.None
	}
}

// ObserveExtension folds an observation on the extension axis. Min-only:
// the axis has no deprecation component.
func (e *Element) ObserveExtension(ext int) {
	if ext <= 0 {
		panic(fmt.Sprintf("history: observe %q with invalid extension version %d", e.Name, ext))
	}
	if e.SinceExtension == 0 || ext < e.SinceExtension {
		e.SinceExtension = ext
	}
}

// Deprecated reports whether the element ended up deprecated.
func (e *Element) Deprecated() bool { return e.DeprecatedIn.IsValid() }

// SDKs returns the combined-axes attribute. Empty until the extension
// overlay pass runs, and empty afterwards for elements where nothing beyond
// the primary axis applies.
func (e *Element) SDKs() string { return e.sdks }

func (e *Element) clone() *Element {
	c := *e
	return &c
}
