package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const snippetLen = 200

func newSearchCmd(configPath *string, verbose *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Args:  cobra.ExactArgs(1),
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

			if ix.Len() == 0 {
				return fmt.Errorf("index is empty, run \"mrlgo index\" first")
			}

			results, err := ix.Search(ctx, args[0], limit)
			if err != nil {
				return err
			}

			for i, r := range results {
				fmt.Printf("%2d. %.4f  %s\n    %s\n", i+1, r.Score, r.Key, snippet(r.Text))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of results")

	return cmd
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= snippetLen {
		return text
	}
	return text[:snippetLen] + "…"
}
