package source

import (
	"strings"
	"testing"

	"github.com/odvcencio/apitrail/pkg/apiversion"
	"github.com/odvcencio/apitrail/pkg/history"
)

const sampleSnapshot = `# toolchain snapshot, version 2
class example/Widget
	extends java/lang/Object
	implements java/lang/Runnable
	method <init>()V
	method run()V
	method legacy()V deprecated
	field COUNT

interface example/Listener deprecated
	method onEvent()V

enum example/Color hidden
	field RED

annotation example/Marker
`

func stampAt(level int) history.Stamp {
	return history.Stamp{Version: apiversion.New(level)}
}

func TestParseSignatures(t *testing.T) {
	h := history.New()
	if err := ParseSignatures(strings.NewReader(sampleSnapshot), stampAt(2), h); err != nil {
		t.Fatalf("ParseSignatures failed: %v", err)
	}

	widget := h.Class("example/Widget")
	if widget == nil {
		t.Fatal("Widget not folded")
	}
	if !widget.Since.Equal(apiversion.New(2)) {
		t.Errorf("Widget since = %s, want 2", widget.Since)
	}
	if len(widget.SuperClasses) != 1 || widget.SuperClasses[0].Name != "java/lang/Object" {
		t.Errorf("Widget supers wrong: %v", widget.SuperClasses)
	}
	if len(widget.Interfaces) != 1 {
		t.Errorf("Widget interfaces = %d, want 1", len(widget.Interfaces))
	}
	if widget.Method("legacy()V") == nil || !widget.Method("legacy()V").Deprecated() {
		t.Error("legacy()V should be deprecated")
	}
	if widget.Method("run()V").Deprecated() {
		t.Error("run()V should not be deprecated")
	}
	if widget.Field("COUNT") == nil {
		t.Error("COUNT field missing")
	}

	listener := h.Class("example/Listener")
	if listener == nil || !listener.Deprecated() {
		t.Error("Listener should be folded and deprecated")
	}

	color := h.Class("example/Color")
	if color == nil || !color.AlwaysHidden() {
		t.Error("Color should be folded and hidden")
	}
	// The enum's implicit supertype comes from the kind rule table.
	if len(color.SuperClasses) != 1 || color.SuperClasses[0].Name != "java/lang/Enum" {
		t.Errorf("Color supers = %v, want implicit java/lang/Enum", color.SuperClasses)
	}

	marker := h.Class("example/Marker")
	if marker == nil || len(marker.Interfaces) != 1 {
		t.Error("Marker should carry the implicit annotation interface")
	}
}

func TestParseSignaturesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"member outside block", "\tmethod run()V\n"},
		{"unknown kind", "struct example/Widget\n"},
		{"missing name", "class\n"},
		{"unknown marker", "class example/Widget sealed\n"},
		{"unknown member keyword", "class example/Widget\n\tproperty x\n"},
		{"member missing name", "class example/Widget\n\tmethod\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := history.New()
			if err := ParseSignatures(strings.NewReader(tt.input), stampAt(1), h); err == nil {
				t.Errorf("expected parse error for %q", tt.input)
			}
		})
	}
}

func TestParseSignaturesExtensionStamp(t *testing.T) {
	h := history.New()
	stamp := history.Stamp{
		Version:   apiversion.New(33),
		Extension: 4,
		Module:    "com.example.mediaprovider",
	}
	input := "class example/Media\n\tmethod open()V\n"
	if err := ParseSignatures(strings.NewReader(input), stamp, h); err != nil {
		t.Fatalf("ParseSignatures failed: %v", err)
	}

	c := h.Class("example/Media")
	if c.SinceExtension != 4 || c.MainlineModule != "com.example.mediaprovider" {
		t.Errorf("extension stamp not applied: %d/%q", c.SinceExtension, c.MainlineModule)
	}
	if c.Method("open()V").SinceExtension != 4 {
		t.Error("extension stamp not applied to members")
	}
}
