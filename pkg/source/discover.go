package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/apitrail/pkg/apiversion"
	"github.com/odvcencio/apitrail/pkg/history"
)

// Discover locates per-version snapshot files in dir, named
// "<version>.api", "<version>.api.zst", or "<version>.zip", and returns
// sources sorted ascending by version — the order they must be applied in.
func Discover(dir string) ([]Source, []apiversion.Version, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("discover snapshots: %w", err)
	}

	type found struct {
		version apiversion.Version
		source  Source
	}
	var matches []found
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base, ok := snapshotBase(name)
		if !ok {
			continue
		}
		v, err := apiversion.Parse(base)
		if err != nil {
			return nil, nil, fmt.Errorf("discover snapshots: %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		stamp := history.Stamp{Version: v}
		var src Source
		if strings.HasSuffix(name, ".zip") {
			src = NewArchiveSource(path, stamp)
		} else {
			src = NewSignatureSource(path, stamp)
		}
		matches = append(matches, found{version: v, source: src})
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("discover snapshots: no snapshot files in %s", dir)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].version.Before(matches[j].version) })

	sources := make([]Source, len(matches))
	versions := make([]apiversion.Version, len(matches))
	for i, f := range matches {
		sources[i] = f.source
		versions[i] = f.version
	}
	return sources, versions, nil
}

func snapshotBase(name string) (string, bool) {
	for _, suffix := range []string{".api", ".api" + compressedSuffix, ".zip"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return "", false
}
