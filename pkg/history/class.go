package history

import (
	"strings"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

// constructorPrefix marks constructor signatures, which are exempt from
// override pruning.
const constructorPrefix = "<init>"

// Class is the history record for one fully-qualified class name. A class
// is itself a versioned element, and owns versioned edges and members.
//
// SuperClasses and Interfaces are ordered lists rather than maps: a class's
// supertype can change identity across versions (and compiled snapshots
// always report an explicit root supertype), so several edges with distinct
// names and version ranges can coexist.
type Class struct {
	Element
	SuperClasses []*Element
	Interfaces   []*Element
	Methods      map[string]*Element
	Fields       map[string]*Element

	everPublic bool // observed non-package-private in at least one version
	inlined    bool // hidden-superclass inlining already ran for this class
}

// NewClass seeds a class record from its first observation.
func NewClass(name string, v apiversion.Version, deprecated, hidden bool) *Class {
	c := &Class{
		Element: *NewElement(name, v, deprecated),
		Methods: make(map[string]*Element),
		Fields:  make(map[string]*Element),
	}
	if !hidden {
		c.everPublic = true
	}
	return c
}

// ObserveClass folds one observation of the class itself.
func (c *Class) ObserveClass(v apiversion.Version, deprecated, hidden bool) {
	c.Observe(v, deprecated)
	if !hidden {
		c.everPublic = true
	}
}

// AlwaysHidden reports whether the class was package-private in every
// version it was observed. Such classes are inlined into subclasses and
// pruned from the visible hierarchy instead of being emitted standalone.
func (c *Class) AlwaysHidden() bool { return !c.everPublic }

// AddSuperClass records that the class extends name at version v, merging
// into an existing edge of the same name if one exists.
func (c *Class) AddSuperClass(name string, v apiversion.Version) *Element {
	return addEdge(&c.SuperClasses, name, v)
}

// AddInterface records that the class implements name at version v.
func (c *Class) AddInterface(name string, v apiversion.Version) *Element {
	return addEdge(&c.Interfaces, name, v)
}

func addEdge(edges *[]*Element, name string, v apiversion.Version) *Element {
	for _, e := range *edges {
		if e.Name == name {
			e.Observe(v, false)
			return e
		}
	}
	e := NewElement(name, v, false)
	*edges = append(*edges, e)
	return e
}

// AddMethod records one observation of a method, keyed by canonical
// signature.
func (c *Class) AddMethod(sig string, v apiversion.Version, deprecated bool) *Element {
	return addMember(c.Methods, sig, v, deprecated)
}

// AddField records one observation of a field.
func (c *Class) AddField(name string, v apiversion.Version, deprecated bool) *Element {
	return addMember(c.Fields, name, v, deprecated)
}

func addMember(members map[string]*Element, name string, v apiversion.Version, deprecated bool) *Element {
	if e, ok := members[name]; ok {
		e.Observe(v, deprecated)
		return e
	}
	e := NewElement(name, v, deprecated)
	members[name] = e
	return e
}

// Method returns the method with the given signature, or nil.
func (c *Class) Method(sig string) *Element { return c.Methods[sig] }

// Field returns the field with the given name, or nil.
func (c *Class) Field(name string) *Element { return c.Fields[name] }

func isConstructor(sig string) bool {
	return strings.HasPrefix(sig, constructorPrefix)
}

// eachElement visits the class's own element plus every edge and member,
// calling fn for each. Used by backfill lookup and the extension overlay.
func (c *Class) eachElement(fn func(*Element)) {
	fn(&c.Element)
	for _, e := range c.SuperClasses {
		fn(e)
	}
	for _, e := range c.Interfaces {
		fn(e)
	}
	for _, e := range c.Methods {
		fn(e)
	}
	for _, e := range c.Fields {
		fn(e)
	}
}
