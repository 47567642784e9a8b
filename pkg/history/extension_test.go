package history

import "testing"

func TestExtensionRulesRejectReservedID(t *testing.T) {
	if _, err := NewExtensionRules(map[string][]int{"m": {0}}); err == nil {
		t.Error("sdk id 0 is reserved for the primary axis")
	}
	if _, err := NewExtensionRules(map[string][]int{"m": {-3}}); err == nil {
		t.Error("negative sdk ids must be rejected")
	}
}

func TestComputeSDKs(t *testing.T) {
	rules, err := NewExtensionRules(map[string][]int{
		"com.example.mediaprovider": {30, 31},
	})
	if err != nil {
		t.Fatalf("NewExtensionRules failed: %v", err)
	}

	h := New()
	h.Fold(Stamp{Version: v("33"), Extension: 3, Module: "com.example.mediaprovider"}, Observation{
		Kind:    KindClass,
		Name:    "example/Media",
		Methods: []Member{{Name: "open()V"}},
	})

	if err := h.Clean(Config{Extensions: rules}); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	c := h.Class("example/Media")
	want := "30:3,31:3,0:33"
	if got := c.SDKs(); got != want {
		t.Errorf("class sdks = %q, want %q", got, want)
	}
	if got := c.Method("open()V").SDKs(); got != want {
		t.Errorf("method sdks = %q, want %q", got, want)
	}
}

func TestSDKsCollapseToEmpty(t *testing.T) {
	rules, err := NewExtensionRules(map[string][]int{
		"com.example.mediaprovider": {30},
	})
	if err != nil {
		t.Fatalf("NewExtensionRules failed: %v", err)
	}

	h := New()
	// No extension axis: attribute stays absent even with a rule present.
	foldClass(h, "21", Observation{Kind: KindClass, Name: "example/Plain"})
	// Extension axis but no rule for the module: also absent.
	h.Fold(Stamp{Version: v("33"), Extension: 2, Module: "com.example.unlisted"}, Observation{
		Kind: KindClass,
		Name: "example/Unlisted",
	})

	if err := h.Clean(Config{Extensions: rules}); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if got := h.Class("example/Plain").SDKs(); got != "" {
		t.Errorf("plain class sdks = %q, want empty", got)
	}
	if got := h.Class("example/Unlisted").SDKs(); got != "" {
		t.Errorf("unlisted module sdks = %q, want empty", got)
	}
}
