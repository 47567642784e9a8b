package history

import (
	"fmt"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

// Patch is one known historical correction: mechanical extraction recorded
// the wrong introduction point for an element (e.g. it was restricted-access
// in its true first version), and the history must report the corrected one.
//
// Patches are declarative data, applied once after all sources fold and
// before normalization. ExpectedSince pins the pre-patch state so a patch
// that no longer matches the live data is caught instead of silently
// rewriting fresh history.
type Patch struct {
	Class  string
	Member string // method signature or field name; empty patches the class itself

	ExpectedSince  apiversion.Version
	Since          apiversion.Version
	DeprecatedIn   apiversion.Version // None leaves deprecation untouched
	ClearExtension bool
}

func (p Patch) key() string {
	if p.Member == "" {
		return p.Class
	}
	return p.Class + "#" + p.Member
}

// Backfill applies the patch table. Any mismatch between a patch's expected
// state and the live data is a fatal consistency error: it means the patch
// went stale after upstream data changed.
func (h *History) Backfill(patches []Patch) error {
	for _, p := range patches {
		e, err := h.lookupPatched(p)
		if err != nil {
			return err
		}
		if !e.Since.Equal(p.ExpectedSince) {
			return fmt.Errorf("stale backfill patch for %s: recorded since is %s, patch expects %s",
				p.key(), e.Since, p.ExpectedSince)
		}
		e.Since = p.Since
		if p.DeprecatedIn.IsValid() {
			e.DeprecatedIn = p.DeprecatedIn
		}
		if p.ClearExtension {
			e.SinceExtension = 0
			e.MainlineModule = ""
		}
	}
	return nil
}

func (h *History) lookupPatched(p Patch) (*Element, error) {
	c := h.classes[p.Class]
	if c == nil {
		return nil, fmt.Errorf("stale backfill patch for %s: class not present", p.key())
	}
	if p.Member == "" {
		return &c.Element, nil
	}
	if e := c.Method(p.Member); e != nil {
		return e, nil
	}
	if e := c.Field(p.Member); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("stale backfill patch for %s: member not present", p.key())
}
