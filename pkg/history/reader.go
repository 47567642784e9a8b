package history

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

// The reader parses the tree-text encoding back into a document model with
// suppression undone: an attribute absent on a child carries its parent's
// value. Round-tripping a serialized history reconstructs the exact
// since/deprecated/removed version of every element.

// DocElement is one resolved element of a read history document.
type DocElement struct {
	Name         string
	Since        apiversion.Version
	DeprecatedIn apiversion.Version // None = not deprecated
	Removed      apiversion.Version // None = still present
	SDKs         string
}

// DocClass is one class node of a read history document.
type DocClass struct {
	DocElement
	Module     string
	Extends    []DocElement
	Implements []DocElement
	Methods    []DocElement
	Fields     []DocElement
}

// Document is a parsed history document.
type Document struct {
	Format  int
	Min     apiversion.Version // None when the floor is the lowest defined
	Classes []DocClass
}

// Class returns the class with the given name, or nil.
func (d *Document) Class(name string) *DocClass {
	for i := range d.Classes {
		if d.Classes[i].Name == name {
			return &d.Classes[i]
		}
	}
	return nil
}

// Member returns the method or field with the given name, or nil.
func (c *DocClass) Member(name string) *DocElement {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// ReadText parses the tree-text encoding.
func ReadText(r io.Reader) (*Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	doc := &Document{}
	var current *DocClass
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		tag, err := parseTag(line)
		if err != nil {
			return nil, fmt.Errorf("read history line %d: %w", lineNo, err)
		}

		switch tag.name {
		case "api":
			if tag.closing {
				continue
			}
			if v, ok := tag.attrs["version"]; ok {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("read history line %d: bad format version %q", lineNo, v)
				}
				doc.Format = n
			}
			if m, ok := tag.attrs["min"]; ok {
				min, err := apiversion.Parse(m)
				if err != nil {
					return nil, fmt.Errorf("read history line %d: %w", lineNo, err)
				}
				doc.Min = min
			}

		case "class":
			if tag.closing {
				current = nil
				continue
			}
			elem, err := resolveElement(tag.attrs, DocElement{})
			if err != nil {
				return nil, fmt.Errorf("read history line %d: %w", lineNo, err)
			}
			doc.Classes = append(doc.Classes, DocClass{
				DocElement: elem,
				Module:     tag.attrs["module"],
			})
			current = &doc.Classes[len(doc.Classes)-1]
			if tag.selfClosed {
				current = nil
			}

		case "extends", "implements", "method", "field":
			if current == nil {
				return nil, fmt.Errorf("read history line %d: <%s> outside a class", lineNo, tag.name)
			}
			elem, err := resolveElement(tag.attrs, current.DocElement)
			if err != nil {
				return nil, fmt.Errorf("read history line %d: %w", lineNo, err)
			}
			switch tag.name {
			case "extends":
				current.Extends = append(current.Extends, elem)
			case "implements":
				current.Implements = append(current.Implements, elem)
			case "method":
				current.Methods = append(current.Methods, elem)
			case "field":
				current.Fields = append(current.Fields, elem)
			}

		default:
			return nil, fmt.Errorf("read history line %d: unknown element <%s>", lineNo, tag.name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return doc, nil
}

// resolveElement builds a DocElement from raw attributes, inheriting any
// suppressed attribute from the parent context.
func resolveElement(raw map[string]string, parent DocElement) (DocElement, error) {
	e := DocElement{
		Name:         raw["name"],
		Since:        parent.Since,
		DeprecatedIn: parent.DeprecatedIn,
		Removed:      parent.Removed,
		SDKs:         parent.SDKs,
	}
	if e.Name == "" {
		return e, fmt.Errorf("element without a name")
	}
	var err error
	if s, ok := raw["since"]; ok {
		if e.Since, err = apiversion.Parse(s); err != nil {
			return e, err
		}
	}
	if s, ok := raw["deprecated"]; ok {
		if e.DeprecatedIn, err = apiversion.Parse(s); err != nil {
			return e, err
		}
	}
	if s, ok := raw["removed"]; ok {
		if e.Removed, err = apiversion.Parse(s); err != nil {
			return e, err
		}
	}
	if s, ok := raw["sdks"]; ok {
		e.SDKs = s
	}
	return e, nil
}

type tagLine struct {
	name       string
	attrs      map[string]string
	selfClosed bool
	closing    bool
}

// parseTag reads one "<name key="value" .../>" line of the tree-text form.
func parseTag(line string) (tagLine, error) {
	var t tagLine
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return t, fmt.Errorf("malformed element %q", line)
	}
	body := line[1 : len(line)-1]
	if strings.HasPrefix(body, "/") {
		t.closing = true
		t.name = strings.TrimSpace(body[1:])
		return t, nil
	}
	if strings.HasSuffix(body, "/") {
		t.selfClosed = true
		body = body[:len(body)-1]
	}

	i := strings.IndexAny(body, " \t")
	if i < 0 {
		t.name = body
		t.attrs = map[string]string{}
		return t, nil
	}
	t.name = body[:i]
	rest := body[i:]

	t.attrs = make(map[string]string)
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		eq := strings.IndexByte(rest, '=')
		if eq < 0 || len(rest) < eq+2 || rest[eq+1] != '"' {
			return t, fmt.Errorf("malformed attribute in %q", line)
		}
		key := rest[:eq]
		rest = rest[eq+2:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return t, fmt.Errorf("unterminated attribute value in %q", line)
		}
		t.attrs[key] = unescapeText(rest[:end])
		rest = rest[end+1:]
	}
	return t, nil
}

// unescapeText reverses escapeText. Ampersand is handled last so that
// sequences like "&amp;lt;" survive a round trip.
func unescapeText(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	r := strings.NewReplacer(
		"&lt;", "<",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return r.Replace(s)
}
