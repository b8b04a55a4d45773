package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/services"
)

func fullSync() *cobra.Command {
	var startFlag string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the whole table from Yahoo Finance history",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, cleanup := newLogger(debug)
			defer cleanup()

			ctx := cmd.Context()

			config, err := getConfig(ctx, lg)

			if err != nil {
				return err
			}

			start := config.SyncStart

			if startFlag != "" {
				start, err = time.Parse(fxsync.DateLayout, startFlag)

				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
			}

			service, closeService, err := buildService(lg, config, fxsync.YahooFinanceProvider, true, true)

			if err != nil {
				return err
			}

			defer closeService()

			report, err := services.FullSyncJob{Service: service, Start: start}.Run(ctx)

			if err != nil {
				lg.Error("full sync failed", zap.Error(err))

				return err
			}

			logReport(lg, report)

			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "First date of the rebuilt series (YYYY-MM-DD)")

	return cmd
}
