package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/apitrail/pkg/apiversion"
	"github.com/odvcencio/apitrail/pkg/history"
)

const sampleConfig = `missing_classes = "remove"

[[backfill]]
class = "example/Legacy"
member = "open()V"
expected_since = "4"
since = "2"
deprecated_in = "6"

[[backfill]]
class = "example/Ext"
expected_since = "30"
since = "30"
clear_extension = true

[[sdk]]
module = "com.example.mediaprovider"
sdks = [30, 31]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apitrail.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	hcfg, err := cfg.HistoryConfig()
	if err != nil {
		t.Fatalf("HistoryConfig failed: %v", err)
	}
	if hcfg.MissingClasses != history.MissingRemove {
		t.Errorf("policy = %v, want remove", hcfg.MissingClasses)
	}
	if hcfg.Extensions == nil {
		t.Error("extension rules not loaded")
	}

	patches, err := cfg.Patches()
	if err != nil {
		t.Fatalf("Patches failed: %v", err)
	}
	if len(patches) != 2 {
		t.Fatalf("patches = %d, want 2", len(patches))
	}
	first := patches[0]
	if first.Class != "example/Legacy" || first.Member != "open()V" {
		t.Errorf("first patch key = %s#%s", first.Class, first.Member)
	}
	if !first.ExpectedSince.Equal(apiversion.New(4)) || !first.Since.Equal(apiversion.New(2)) {
		t.Errorf("first patch versions = %s/%s", first.ExpectedSince, first.Since)
	}
	if !first.DeprecatedIn.Equal(apiversion.New(6)) {
		t.Errorf("first patch deprecated_in = %s", first.DeprecatedIn)
	}
	if second := patches[1]; !second.ClearExtension || second.DeprecatedIn.IsValid() {
		t.Errorf("second patch = %+v", second)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	hcfg, err := cfg.HistoryConfig()
	if err != nil {
		t.Fatalf("HistoryConfig failed: %v", err)
	}
	if hcfg.MissingClasses != history.MissingReport {
		t.Error("default policy should be report")
	}
	if hcfg.Extensions != nil {
		t.Error("default config should carry no extension rules")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing config file must not silently fall back to defaults")
	}

	cfg, err := Load(writeConfig(t, `missing_classes = "explode"`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cfg.HistoryConfig(); err == nil {
		t.Error("unknown policy must be rejected")
	}

	cfg, err = Load(writeConfig(t, "[[backfill]]\nclass = \"example/A\"\nexpected_since = \"x\"\nsince = \"1\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cfg.Patches(); err == nil {
		t.Error("malformed patch version must be rejected")
	}
}
