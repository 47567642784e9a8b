package history

import (
	"encoding/json"
	"io"
	"sort"
)

// The JSON encoding carries exactly the same information as the tree-text
// form and applies the same parent-value suppression: a suppressed
// attribute is an omitted field.

type jsonElement struct {
	Name       string `json:"name"`
	Since      string `json:"since,omitempty"`
	Deprecated string `json:"deprecated,omitempty"`
	Removed    string `json:"removed,omitempty"`
	SDKs       string `json:"sdks,omitempty"`
}

type jsonClass struct {
	jsonElement
	Module     string        `json:"module,omitempty"`
	Extends    []jsonElement `json:"extends,omitempty"`
	Implements []jsonElement `json:"implements,omitempty"`
	Methods    []jsonElement `json:"methods,omitempty"`
	Fields     []jsonElement `json:"fields,omitempty"`
}

type jsonAPI struct {
	Version int         `json:"version"`
	Min     string      `json:"min,omitempty"`
	Classes []jsonClass `json:"classes"`
}

// WriteJSON writes the structured-document encoding.
func (p *Printer) WriteJSON(w io.Writer, h *History) error {
	doc := jsonAPI{
		Version: FormatVersion,
		Min:     p.minAttr(h),
		Classes: make([]jsonClass, 0, h.Len()),
	}

	for _, name := range h.ClassNames() {
		c := h.classes[name]
		ca := p.fullAttrs(&c.Element)

		jc := jsonClass{
			jsonElement: p.jsonElem(&c.Element, attrs{}),
			Module:      c.MainlineModule,
			Extends:     p.jsonChildren(c.SuperClasses, ca),
			Implements:  p.jsonChildren(c.Interfaces, ca),
			Methods:     p.jsonChildren(sortedMembers(c.Methods), ca),
			Fields:      p.jsonChildren(sortedMembers(c.Fields), ca),
		}
		doc.Classes = append(doc.Classes, jc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(doc)
}

func (p *Printer) jsonElem(e *Element, parent attrs) jsonElement {
	a := suppress(p.fullAttrs(e), parent)
	return jsonElement{
		Name:       e.Name,
		Since:      a.Since,
		Deprecated: a.Deprecated,
		Removed:    a.Removed,
		SDKs:       a.SDKs,
	}
}

func (p *Printer) jsonChildren(elems []*Element, parent attrs) []jsonElement {
	sorted := make([]*Element, len(elems))
	copy(sorted, elems)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	out := make([]jsonElement, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, p.jsonElem(e, parent))
	}
	return out
}
