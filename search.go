package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/bookreflect/backend/repository"
	"github.com/kevinaaaquil/bookreflect/backend/service"
)

func searchCmd() *cobra.Command {
	var limit, start int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the public book API",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			gb := service.NewGoogleBooks(cfg.GoogleBooksURL, cfg.GoogleBooksAPIKey, cfg.GoogleBooksRPS)
			vols, err := gb.Search(ctx, strings.Join(args, " "), start, repository.ClampPageSize(limit))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range repository.VolumesToBooks(vols) {
				fmt.Fprintf(out, "%s\t%s\t%s\n", b.ID, b.Title, b.Author)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", repository.DefaultPageSize, "number of results")
	cmd.Flags().IntVar(&start, "start", 0, "start index")
	return cmd
}
