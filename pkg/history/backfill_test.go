package history

import (
	"strings"
	"testing"

	"github.com/odvcencio/apitrail/pkg/apiversion"
)

func TestBackfillCorrectsSince(t *testing.T) {
	h := New()
	foldClass(h, "4", Observation{
		Kind:    KindClass,
		Name:    "example/Legacy",
		Methods: []Member{{Name: "old()V"}},
	})

	patches := []Patch{
		{
			Class:         "example/Legacy",
			Member:        "old()V",
			ExpectedSince: v("4"),
			Since:         v("2"),
		},
		{
			Class:         "example/Legacy",
			ExpectedSince: v("4"),
			Since:         v("1"),
			DeprecatedIn:  v("6"),
		},
	}
	if err := h.Backfill(patches); err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}

	c := h.Class("example/Legacy")
	if !c.Since.Equal(v("1")) {
		t.Errorf("class since = %s, want 1", c.Since)
	}
	if !c.DeprecatedIn.Equal(v("6")) {
		t.Errorf("class deprecatedIn = %s, want 6", c.DeprecatedIn)
	}
	if got := c.Method("old()V"); !got.Since.Equal(v("2")) {
		t.Errorf("method since = %s, want 2", got.Since)
	}
}

func TestBackfillClearsExtension(t *testing.T) {
	h := New()
	h.Fold(Stamp{Version: v("30"), Extension: 4, Module: "com.example.module"}, Observation{
		Kind: KindClass,
		Name: "example/Ext",
	})

	err := h.Backfill([]Patch{{
		Class:          "example/Ext",
		ExpectedSince:  v("30"),
		Since:          v("30"),
		ClearExtension: true,
	}})
	if err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}

	c := h.Class("example/Ext")
	if c.SinceExtension != 0 || c.MainlineModule != "" {
		t.Errorf("extension info = %d/%q, want cleared", c.SinceExtension, c.MainlineModule)
	}
}

func TestBackfillStaleDetection(t *testing.T) {
	h := New()
	foldClass(h, "3", Observation{Kind: KindClass, Name: "example/Legacy"})

	tests := []struct {
		name  string
		patch Patch
	}{
		{"since mismatch", Patch{Class: "example/Legacy", ExpectedSince: v("4"), Since: v("2")}},
		{"class absent", Patch{Class: "example/Gone", ExpectedSince: v("3"), Since: v("2")}},
		{"member absent", Patch{Class: "example/Legacy", Member: "nope()V", ExpectedSince: v("3"), Since: v("2")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Backfill([]Patch{tt.patch})
			if err == nil {
				t.Fatal("expected stale-patch error")
			}
			if !strings.Contains(err.Error(), "stale backfill patch") {
				t.Errorf("error %q does not name the stale patch", err)
			}
		})
	}

	// The failed patches must not have modified the store.
	if !h.Class("example/Legacy").Since.Equal(v("3")) {
		t.Error("stale patch mutated the store")
	}
}

func TestBackfillLeavesDeprecationWhenUnset(t *testing.T) {
	h := New()
	foldClass(h, "2", Observation{Kind: KindClass, Name: "example/Legacy", Deprecated: true})

	err := h.Backfill([]Patch{{
		Class:         "example/Legacy",
		ExpectedSince: v("2"),
		Since:         v("1"),
		DeprecatedIn:  apiversion.None,
	}})
	if err != nil {
		t.Fatalf("Backfill failed: %v", err)
	}
	if !h.Class("example/Legacy").DeprecatedIn.Equal(v("2")) {
		t.Error("patch without a deprecation correction must leave deprecation untouched")
	}
}
