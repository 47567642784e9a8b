package history

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

// FormatVersion is the version of the serialized history format itself.
const FormatVersion = 3

// Printer serializes a cleaned history store. Both encodings walk the tree
// in name order at every level and apply the same parent-value suppression
// rule, so repeated runs over the same data are byte-identical and
// downstream diffs stay quiet.
type Printer struct {
	// Seq is the full sequence of versions folded into the store. The
	// "removed" attribute is the successor of an element's last-present
	// version resolved through it; the successor of 35.1 may be 36.
	Seq *apiversion.Sequence
}

// attrs holds one element's serialized attribute values. An empty string
// means the attribute is omitted.
type attrs struct {
	Since      string
	Deprecated string
	Removed    string
	SDKs       string
}

// fullAttrs computes every attribute of e with nothing suppressed.
func (p *Printer) fullAttrs(e *Element) attrs {
	a := attrs{Since: e.Since.String(), SDKs: e.SDKs()}
	if e.Deprecated() {
		a.Deprecated = e.DeprecatedIn.String()
	}
	if removed, ok := p.removedIn(e); ok {
		a.Removed = removed.String()
	}
	return a
}

// suppress drops attributes value-identical to the parent context. Pure
// function of (child, parent); traversal order never feeds into it.
func suppress(child, parent attrs) attrs {
	if child.Since == parent.Since {
		child.Since = ""
	}
	if child.Deprecated == parent.Deprecated {
		child.Deprecated = ""
	}
	if child.Removed == parent.Removed {
		child.Removed = ""
	}
	if child.SDKs == parent.SDKs {
		child.SDKs = ""
	}
	return child
}

// removedIn resolves the version in which e disappeared: the successor of
// its last-present version, defined only when the element was gone before
// the newest folded version.
func (p *Printer) removedIn(e *Element) (apiversion.Version, bool) {
	if !e.LastPresent.Before(p.Seq.Latest()) {
		return apiversion.None, false
	}
	return p.Seq.After(e.LastPresent)
}

// minAttr returns the version-floor attribute for the root, empty when the
// floor is the lowest defined version (level 1) or the store is empty.
func (p *Printer) minAttr(h *History) string {
	floor := h.Floor()
	if !floor.IsValid() || floor.Equal(apiversion.New(1)) {
		return ""
	}
	return floor.String()
}

// escapeText covers the characters that are unsafe inside a double-quoted
// attribute: ampersand first, then less-than, quote, and apostrophe.
func escapeText(s string) string {
	if !strings.ContainsAny(s, `&<"'`) {
		return s
	}
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// WriteText writes the attributed-element tree-text encoding.
func (p *Printer) WriteText(w io.Writer, h *History) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(`<api version="`)
	bw.WriteString(strconv.Itoa(FormatVersion))
	bw.WriteString(`"`)
	if min := p.minAttr(h); min != "" {
		writeAttr(bw, "min", min)
	}
	bw.WriteString(">\n")

	for _, name := range h.ClassNames() {
		c := h.classes[name]
		ca := p.fullAttrs(&c.Element)

		bw.WriteString("\t<class")
		writeAttr(bw, "name", c.Name)
		writeAttrs(bw, suppress(ca, attrs{}))
		if c.MainlineModule != "" {
			writeAttr(bw, "module", c.MainlineModule)
		}
		bw.WriteString(">\n")

		p.writeChildren(bw, "extends", c.SuperClasses, ca)
		p.writeChildren(bw, "implements", c.Interfaces, ca)
		p.writeChildren(bw, "method", sortedMembers(c.Methods), ca)
		p.writeChildren(bw, "field", sortedMembers(c.Fields), ca)

		bw.WriteString("\t</class>\n")
	}

	bw.WriteString("</api>\n")
	return bw.Flush()
}

func (p *Printer) writeChildren(bw *bufio.Writer, tag string, elems []*Element, parent attrs) {
	sorted := make([]*Element, len(elems))
	copy(sorted, elems)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, e := range sorted {
		bw.WriteString("\t\t<")
		bw.WriteString(tag)
		writeAttr(bw, "name", e.Name)
		writeAttrs(bw, suppress(p.fullAttrs(e), parent))
		bw.WriteString("/>\n")
	}
}

func sortedMembers(members map[string]*Element) []*Element {
	out := make([]*Element, 0, len(members))
	for _, e := range members {
		out = append(out, e)
	}
	return out
}

func writeAttrs(bw *bufio.Writer, a attrs) {
	if a.Since != "" {
		writeAttr(bw, "since", a.Since)
	}
	if a.Deprecated != "" {
		writeAttr(bw, "deprecated", a.Deprecated)
	}
	if a.Removed != "" {
		writeAttr(bw, "removed", a.Removed)
	}
	if a.SDKs != "" {
		writeAttr(bw, "sdks", a.SDKs)
	}
}

func writeAttr(bw *bufio.Writer, key, val string) {
	bw.WriteByte(' ')
	bw.WriteString(key)
	bw.WriteString(`="`)
	bw.WriteString(escapeText(val))
	bw.WriteByte('"')
}

