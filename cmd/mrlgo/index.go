package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mrlgo/corpus"
	"github.com/hupe1980/mrlgo/indexer"
)

func newIndexCmd(configPath *string, verbose *bool) *cobra.Command {
	var (
		path     string
		reindex  bool
		maxFiles int
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index a directory of text and code files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ix, err := openIndex(ctx, cfg, *verbose)
			if err != nil {
				return err
			}
			defer ix.Close()

			src := corpus.NewFSSource(path, func(o *corpus.FSOptions) {
				if maxFiles > 0 {
					o.MaxFiles = maxFiles
				}
			})

			stats, err := ix.Build(ctx, src, func(o *indexer.Options) {
				o.Reindex = reindex
			})
			if err != nil {
				return err
			}

			fmt.Printf("indexed %d, unchanged %d, skipped %d (%d entries total)\n",
				stats.Indexed, stats.Unchanged, stats.Skipped, ix.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "directory to index")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "re-embed everything, ignoring content hashes")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "cap on files read (0 = unlimited)")

	return cmd
}
