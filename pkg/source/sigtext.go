package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/apitrail/pkg/history"
)

// SignatureSource reads one version's API surface from the line-oriented
// snapshot text format:
//
//	# comment
//	class example/Widget
//		extends java/lang/Object
//		implements java/lang/Runnable
//		method run()V
//		method legacy()V deprecated
//		field COUNT
//	enum example/Color hidden
//
// A header line is "<kind> <name> [deprecated] [hidden]" with kind one of
// class, interface, enum, annotation. Member lines are indented and belong
// to the preceding header. Names are canonical signatures; the parser does
// no language-level interpretation.
type SignatureSource struct {
	Path  string
	Stamp history.Stamp
}

// NewSignatureSource returns a source reading path (plain or .zst) with the
// given stamp.
func NewSignatureSource(path string, stamp history.Stamp) *SignatureSource {
	return &SignatureSource{Path: path, Stamp: stamp}
}

// Apply folds the snapshot into h.
func (s *SignatureSource) Apply(h *history.History) error {
	f, err := Open(s.Path)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", s.Path, err)
	}
	defer f.Close()
	if err := ParseSignatures(f, s.Stamp, h); err != nil {
		return fmt.Errorf("snapshot %s: %w", s.Path, err)
	}
	return nil
}

var classKinds = map[string]history.ClassKind{
	"class":      history.KindClass,
	"interface":  history.KindInterface,
	"enum":       history.KindEnum,
	"annotation": history.KindAnnotation,
}

// ParseSignatures reads the snapshot text format from r and folds every
// class it describes into h under the given stamp.
func ParseSignatures(r io.Reader, stamp history.Stamp, h *history.History) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var current *history.Observation
	flush := func() {
		if current != nil {
			h.Fold(stamp, *current)
			current = nil
		}
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		indented := raw != line

		fields := strings.Fields(line)
		if indented {
			if current == nil {
				return fmt.Errorf("line %d: member outside a class block", lineNo)
			}
			if err := parseMember(fields, current); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		kind, ok := classKinds[fields[0]]
		if !ok {
			return fmt.Errorf("line %d: unknown kind %q", lineNo, fields[0])
		}
		if len(fields) < 2 {
			return fmt.Errorf("line %d: %s without a name", lineNo, fields[0])
		}
		flush()
		obs := history.Observation{Kind: kind, Name: fields[1]}
		for _, marker := range fields[2:] {
			switch marker {
			case "deprecated":
				obs.Deprecated = true
			case "hidden":
				obs.Hidden = true
			default:
				return fmt.Errorf("line %d: unknown marker %q", lineNo, marker)
			}
		}
		current = &obs
	}
	if err := sc.Err(); err != nil {
		return err
	}
	flush()
	return nil
}

func parseMember(fields []string, obs *history.Observation) error {
	if len(fields) < 2 {
		return fmt.Errorf("%s without a name", fields[0])
	}
	name := fields[1]
	deprecated := false
	for _, marker := range fields[2:] {
		if marker != "deprecated" {
			return fmt.Errorf("unknown marker %q", marker)
		}
		deprecated = true
	}

	switch fields[0] {
	case "extends":
		obs.SuperClasses = append(obs.SuperClasses, name)
	case "implements":
		obs.Interfaces = append(obs.Interfaces, name)
	case "method":
		obs.Methods = append(obs.Methods, history.Member{Name: name, Deprecated: deprecated})
	case "field":
		obs.Fields = append(obs.Fields, history.Member{Name: name, Deprecated: deprecated})
	default:
		return fmt.Errorf("unknown member keyword %q", fields[0])
	}
	return nil
}
