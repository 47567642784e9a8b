package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

// ClassKind classifies what kind of type an observed class is. The kind
// decides which implicit supertypes snapshot producers may have omitted.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// implicitRule names the supertypes a kind carries even when a snapshot
// omits them. Kept as a table so the policy stays auditable in one place.
type implicitRule struct {
	super string
	iface string
}

var implicitSupers = map[ClassKind]implicitRule{
	KindClass:      {},
	KindInterface:  {},
	KindEnum:       {super: "java/lang/Enum"},
	KindAnnotation: {iface: "java/lang/annotation/Annotation"},
}

// Member is one observed method or field.
type Member struct {
	Name       string // canonical signature for methods
	Deprecated bool
}

// Observation is the neutral "one class as seen in one snapshot" value that
// update sources hand to Fold. Every name is already in canonical form.
type Observation struct {
	Kind         ClassKind
	Name         string
	Deprecated   bool
	Hidden       bool // package-private in this snapshot
	SuperClasses []string
	Interfaces   []string
	Methods      []Member
	Fields       []Member
}

// Stamp tags one source's worth of data: the primary release version, plus
// an optional extension SDK version and owning module.
type Stamp struct {
	Version   apiversion.Version
	Extension int    // 0 = no extension axis
	Module    string // owning mainline module when Extension is set
}

// MissingClassPolicy selects what happens when a super or interface edge
// names a class absent from the store.
type MissingClassPolicy int

const (
	// MissingKeep leaves dangling edges alone, for histories that
	// intentionally forward-reference independently-loaded data.
	MissingKeep MissingClassPolicy = iota
	// MissingRemove silently drops dangling edges.
	MissingRemove
	// MissingReport fails with one aggregated error naming every missing
	// class and every class referencing it.
	MissingReport
)

// ParseMissingClassPolicy reads a policy from its configuration spelling.
func ParseMissingClassPolicy(s string) (MissingClassPolicy, error) {
	switch s {
	case "keep":
		return MissingKeep, nil
	case "remove":
		return MissingRemove, nil
	case "report":
		return MissingReport, nil
	}
	return 0, fmt.Errorf("unknown missing-class policy %q (want keep, remove, or report)", s)
}

// Config holds the knobs the normalization pipeline needs. Passed
// explicitly; the store carries no ambient options.
type Config struct {
	MissingClasses MissingClassPolicy
	// Extensions maps mainline modules to extension SDKs. Nil disables the
	// overlay pass.
	Extensions *ExtensionRules
}

// History is the top-level store: fully-qualified class name to class
// record. It is exclusively owned by one goroutine: constructed, folded
// into repeatedly, cleaned once, then read-only for serialization.
type History struct {
	classes map[string]*Class
	floor   apiversion.Version // lowest primary version folded in
}

// New returns an empty history store.
func New() *History {
	return &History{classes: make(map[string]*Class), floor: apiversion.Highest}
}

// Class returns the record for name, or nil.
func (h *History) Class(name string) *Class { return h.classes[name] }

// Len returns the number of class records.
func (h *History) Len() int { return len(h.classes) }

// ClassNames returns all class names, sorted.
func (h *History) ClassNames() []string {
	names := make([]string, 0, len(h.classes))
	for name := range h.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Floor returns the lowest primary version folded into the store.
func (h *History) Floor() apiversion.Version { return h.floor }

// Fold applies one class observation at the stamped version. It is the
// single state-update entry point for every update source: idempotent, and
// commutative per element with respect to final since/lastPresent values.
func (h *History) Fold(stamp Stamp, obs Observation) *Class {
	v := stamp.Version
	h.floor = apiversion.Min(h.floor, v)

	c, ok := h.classes[obs.Name]
	if !ok {
		c = NewClass(obs.Name, v, obs.Deprecated, obs.Hidden)
		h.classes[obs.Name] = c
	} else {
		c.ObserveClass(v, obs.Deprecated, obs.Hidden)
	}

	supers := obs.SuperClasses
	ifaces := obs.Interfaces
	if rule := implicitSupers[obs.Kind]; rule.super != "" || rule.iface != "" {
		if rule.super != "" && !containsName(supers, rule.super) {
			supers = append(append([]string(nil), supers...), rule.super)
		}
		if rule.iface != "" && !containsName(ifaces, rule.iface) {
			ifaces = append(append([]string(nil), ifaces...), rule.iface)
		}
	}

	for _, name := range supers {
		e := c.AddSuperClass(name, v)
		h.stampExtension(stamp, e)
	}
	for _, name := range ifaces {
		e := c.AddInterface(name, v)
		h.stampExtension(stamp, e)
	}
	for _, m := range obs.Methods {
		e := c.AddMethod(m.Name, v, m.Deprecated)
		h.stampExtension(stamp, e)
	}
	for _, f := range obs.Fields {
		e := c.AddField(f.Name, v, f.Deprecated)
		h.stampExtension(stamp, e)
	}

	if stamp.Extension > 0 {
		c.ObserveExtension(stamp.Extension)
		if stamp.Module != "" {
			c.MainlineModule = stamp.Module
		}
	}
	return c
}

func (h *History) stampExtension(stamp Stamp, e *Element) {
	if stamp.Extension > 0 {
		e.ObserveExtension(stamp.Extension)
	}
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

// Clean runs the global normalization pipeline once, after all sources have
// been folded and any backfill applied. Pass order matters: each pass
// assumes the invariants established by the previous one.
func (h *History) Clean(cfg Config) error {
	names := h.ClassNames()

	for _, name := range names {
		h.inlineFromHiddenSuperClasses(h.classes[name])
	}
	for _, name := range names {
		h.removeImplicitInterfaces(h.classes[name])
	}
	for _, name := range names {
		h.removeOverridingMethods(h.classes[name])
	}
	for _, name := range names {
		h.pruneHiddenSuperClasses(h.classes[name])
	}

	// The hidden records themselves leave the store: their members were
	// inlined and their edges pruned, so emitting them standalone would
	// duplicate every inlined member. Removed before the missing-reference
	// policy so a hidden class's own dangling edges are not reported.
	for _, name := range names {
		if h.classes[name].AlwaysHidden() {
			delete(h.classes, name)
		}
	}

	switch cfg.MissingClasses {
	case MissingKeep:
	case MissingRemove:
		h.removeMissingReferences()
	case MissingReport:
		if err := h.reportMissingReferences(); err != nil {
			return err
		}
	}

	if cfg.Extensions != nil {
		h.computeSDKs(cfg.Extensions)
	}
	return nil
}

// inlineFromHiddenSuperClasses splices members of always-hidden superclasses
// into c. The subclass's own declarations win; the hidden chain is resolved
// depth-first with the inlined flag set before recursing, so malformed
// cyclic hierarchies terminate (a revisit is a no-op).
func (h *History) inlineFromHiddenSuperClasses(c *Class) {
	if c.inlined {
		return
	}
	c.inlined = true

	for _, sup := range c.SuperClasses {
		sc := h.classes[sup.Name]
		if sc == nil || !sc.AlwaysHidden() {
			continue
		}
		h.inlineFromHiddenSuperClasses(sc)
		for sig, m := range sc.Methods {
			if _, ok := c.Methods[sig]; !ok && !isConstructor(sig) {
				c.Methods[sig] = m.clone()
			}
		}
		for name, f := range sc.Fields {
			if _, ok := c.Fields[name]; !ok {
				c.Fields[name] = f.clone()
			}
		}
	}
}

// removeImplicitInterfaces drops interface edges that are already satisfied
// transitively through a superclass edge introduced no later than the
// interface edge itself. Compiled snapshots redundantly list every
// transitively-implemented interface; only the most specific declaration
// carries history.
func (h *History) removeImplicitInterfaces(c *Class) {
	kept := c.Interfaces[:0]
	for _, iface := range c.Interfaces {
		implied := false
		for _, sup := range c.SuperClasses {
			if !sup.Since.AtMost(iface.Since) {
				continue
			}
			if h.implementsInterface(sup.Name, iface.Name, iface.Since, make(map[string]struct{})) {
				implied = true
				break
			}
		}
		if !implied {
			kept = append(kept, iface)
		}
	}
	for i := len(kept); i < len(c.Interfaces); i++ {
		c.Interfaces[i] = nil
	}
	c.Interfaces = kept
}

// implementsInterface reports whether className transitively implements
// ifaceName, following only edges introduced no later than maxSince. The
// seen set bounds recursion on malformed cyclic hierarchies. Always-hidden
// classes are not followed: they leave the visible hierarchy during
// normalization, so nothing reached only through them counts as inherited.
func (h *History) implementsInterface(className, ifaceName string, maxSince apiversion.Version, seen map[string]struct{}) bool {
	if _, ok := seen[className]; ok {
		return false
	}
	seen[className] = struct{}{}

	c := h.classes[className]
	if c == nil || c.AlwaysHidden() {
		return false
	}
	for _, e := range c.Interfaces {
		if !e.Since.AtMost(maxSince) {
			continue
		}
		if e.Name == ifaceName || h.implementsInterface(e.Name, ifaceName, maxSince, seen) {
			return true
		}
	}
	for _, e := range c.SuperClasses {
		if !e.Since.AtMost(maxSince) {
			continue
		}
		if h.implementsInterface(e.Name, ifaceName, maxSince, seen) {
			return true
		}
	}
	return false
}

// removeOverridingMethods drops non-constructor methods that some ancestor
// already declared at the same or an earlier version: a pure override
// contributes no new history.
func (h *History) removeOverridingMethods(c *Class) {
	for sig, m := range c.Methods {
		if isConstructor(sig) {
			continue
		}
		if h.ancestorDeclares(c, sig, m.Since, make(map[string]struct{})) {
			delete(c.Methods, sig)
		}
	}
}

// ancestorDeclares reports whether any superclass or interface reachable
// from c through edges introduced no later than maxSince declares sig at a
// version no later than maxSince. Always-hidden ancestors are skipped:
// their members were inlined into subclasses and their edges are pruned,
// so they declare nothing on behalf of the visible hierarchy.
func (h *History) ancestorDeclares(c *Class, sig string, maxSince apiversion.Version, seen map[string]struct{}) bool {
	check := func(edges []*Element) bool {
		for _, e := range edges {
			if !e.Since.AtMost(maxSince) {
				continue
			}
			if _, ok := seen[e.Name]; ok {
				continue
			}
			seen[e.Name] = struct{}{}
			a := h.classes[e.Name]
			if a == nil || a.AlwaysHidden() {
				continue
			}
			if m, ok := a.Methods[sig]; ok && m.Since.AtMost(maxSince) {
				return true
			}
			if h.ancestorDeclares(a, sig, maxSince, seen) {
				return true
			}
		}
		return false
	}
	return check(c.SuperClasses) || check(c.Interfaces)
}

// pruneHiddenSuperClasses removes super edges pointing at always-hidden
// classes. The hidden class vanished from the visible hierarchy, so the
// edges that stand in for it are re-anchored: every kept edge introduced at
// or after the hidden class's own since is given the minimum since across
// all of the class's super edges.
func (h *History) pruneHiddenSuperClasses(c *Class) {
	minSince := apiversion.Highest
	hiddenFloor := apiversion.Highest
	hasHidden := false
	for _, e := range c.SuperClasses {
		minSince = apiversion.Min(minSince, e.Since)
		sc := h.classes[e.Name]
		if sc != nil && sc.AlwaysHidden() {
			hasHidden = true
			hiddenFloor = apiversion.Min(hiddenFloor, sc.Since)
		}
	}
	if !hasHidden {
		return
	}

	kept := c.SuperClasses[:0]
	for _, e := range c.SuperClasses {
		sc := h.classes[e.Name]
		if sc != nil && sc.AlwaysHidden() {
			continue
		}
		if !e.Since.Before(hiddenFloor) {
			e.Since = minSince
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(c.SuperClasses); i++ {
		c.SuperClasses[i] = nil
	}
	c.SuperClasses = kept
}

// removeMissingReferences silently drops super and interface edges naming
// classes absent from the store.
func (h *History) removeMissingReferences() {
	drop := func(edges []*Element) []*Element {
		kept := edges[:0]
		for _, e := range edges {
			if _, ok := h.classes[e.Name]; ok {
				kept = append(kept, e)
			}
		}
		for i := len(kept); i < len(edges); i++ {
			edges[i] = nil
		}
		return kept
	}
	for _, c := range h.classes {
		c.SuperClasses = drop(c.SuperClasses)
		c.Interfaces = drop(c.Interfaces)
	}
}

// reportMissingReferences collects every dangling super/interface edge and
// fails with one aggregated, sorted error. Batching all offenders into a
// single message beats failing on the first: the fix is usually a missing
// snapshot, and the full list points at it.
func (h *History) reportMissingReferences() error {
	missing := make(map[string][]string)
	noted := make(map[[2]string]struct{})
	for name, c := range h.classes {
		note := func(edges []*Element) {
			for _, e := range edges {
				if _, ok := h.classes[e.Name]; ok {
					continue
				}
				pair := [2]string{e.Name, name}
				if _, ok := noted[pair]; ok {
					continue
				}
				noted[pair] = struct{}{}
				missing[e.Name] = append(missing[e.Name], name)
			}
		}
		note(c.SuperClasses)
		note(c.Interfaces)
	}
	if len(missing) == 0 {
		return nil
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%d missing classes referenced from the api history:", len(names))
	for _, name := range names {
		refs := missing[name]
		sort.Strings(refs)
		fmt.Fprintf(&b, "\n  %s referenced by:", name)
		for _, ref := range refs {
			fmt.Fprintf(&b, "\n    %s", ref)
		}
	}
	return fmt.Errorf("%s", b.String())
}
