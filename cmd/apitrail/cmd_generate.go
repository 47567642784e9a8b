package main

import (
	"bytes"
	"fmt"

	"github.com/odvcencio/apitrail/pkg/apiversion"
	"github.com/odvcencio/apitrail/pkg/config"
	"github.com/odvcencio/apitrail/pkg/history"
	"github.com/odvcencio/apitrail/pkg/source"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		snapshotDir string
		outPath     string
		configPath  string
		asJSON      bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fold per-version snapshots into an API history document",
		Long: `Generate discovers snapshot files named <version>.api, <version>.api.zst,
or <version>.zip in the snapshot directory, folds them oldest-first into one
history store, applies the configured backfill patches, normalizes, and
writes the serialized history. An output path ending in .zst is compressed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			hcfg, err := cfg.HistoryConfig()
			if err != nil {
				return err
			}
			patches, err := cfg.Patches()
			if err != nil {
				return err
			}

			sources, versions, err := source.Discover(snapshotDir)
			if err != nil {
				return err
			}

			h := history.New()
			for i, src := range sources {
				log.Debug().Stringer("version", versions[i]).Msg("folding snapshot")
				if err := src.Apply(h); err != nil {
					return err
				}
			}

			if len(patches) > 0 {
				log.Debug().Int("patches", len(patches)).Msg("applying backfill")
				if err := h.Backfill(patches); err != nil {
					return err
				}
			}
			if err := h.Clean(hcfg); err != nil {
				return err
			}

			p := &history.Printer{Seq: apiversion.NewSequence(versions...)}
			var buf bytes.Buffer
			if asJSON {
				err = p.WriteJSON(&buf, h)
			} else {
				err = p.WriteText(&buf, h)
			}
			if err != nil {
				return fmt.Errorf("serialize history: %w", err)
			}

			if outPath == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := source.WriteFile(outPath, buf.Bytes()); err != nil {
				return err
			}
			log.Info().
				Int("classes", h.Len()).
				Int("versions", len(versions)).
				Str("out", outPath).
				Msg("history written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&snapshotDir, "snapshots", "s", ".", "directory containing per-version snapshot files")
	cmd.Flags().StringVarP(&outPath, "out", "o", "api-history.xml", "output path (- for stdout)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the JSON encoding instead of tree-text")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}
