package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tool-catalog/internal/tool_catalog/importer"
)

func newImportCommand(configPath *string) *cobra.Command {
	var (
		label      string
		regenerate bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import a catalog spreadsheet as a new active version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if label == "" {
				label = filepath.Base(args[0])
			}

			d, err := setup(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := d.importer.Run(cmd.Context(), buf, label, importer.Options{RegenerateNarratives: regenerate})
			if err != nil {
				return err
			}
			d.log.Info("Import finished",
				zap.String("versionId", res.VersionID),
				zap.Int("rows", res.Rows),
				zap.Int("created", res.Created),
				zap.Int("updated", res.Updated),
				zap.Int("skipped", res.Skipped),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "version %s: %d created, %d updated, %d skipped\n",
				res.VersionID, res.Created, res.Updated, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "version label (defaults to the file name)")
	cmd.Flags().BoolVar(&regenerate, "regenerate-narratives", false, "regenerate summaries even for tools that have one")
	return cmd
}
