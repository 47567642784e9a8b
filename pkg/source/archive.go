package source

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/odvcencio/apitrail/pkg/history"
)

// ArchiveSource reads one version's surface from a zip bundle of snapshot
// files. Entries ending in .api (optionally .api.zst) are parsed in name
// order; everything else is ignored, so a bundle can carry its own metadata
// alongside the snapshots.
type ArchiveSource struct {
	Path  string
	Stamp history.Stamp
}

// NewArchiveSource returns a source reading the zip bundle at path.
func NewArchiveSource(path string, stamp history.Stamp) *ArchiveSource {
	return &ArchiveSource{Path: path, Stamp: stamp}
}

// Apply folds every snapshot entry in the bundle into h.
func (s *ArchiveSource) Apply(h *history.History) error {
	zr, err := zip.OpenReader(s.Path)
	if err != nil {
		return fmt.Errorf("archive %s: %w", s.Path, err)
	}
	defer zr.Close()

	entries := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".api") || strings.HasSuffix(f.Name, ".api"+compressedSuffix) {
			entries = append(entries, f)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for _, f := range entries {
		if err := s.applyEntry(f, h); err != nil {
			return fmt.Errorf("archive %s: entry %s: %w", s.Path, f.Name, err)
		}
	}
	return nil
}

func (s *ArchiveSource) applyEntry(f *zip.File, h *history.History) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	var r io.Reader = rc
	if strings.HasSuffix(f.Name, compressedSuffix) {
		zrc, err := newZstdReader(rc)
		if err != nil {
			return err
		}
		defer zrc.Close()
		r = zrc
	}
	return ParseSignatures(r, s.Stamp, h)
}
