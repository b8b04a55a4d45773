package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/services"
)

func daily() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Fetch one day of rates and upload them",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, cleanup := newLogger(debug)
			defer cleanup()

			ctx := cmd.Context()

			config, err := getConfig(ctx, lg)

			if err != nil {
				return err
			}

			var date time.Time

			if dateFlag != "" {
				date, err = time.Parse(fxsync.DateLayout, dateFlag)

				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			service, closeService, err := buildService(lg, config, config.DailyProvider, config.Interpolate, false)

			if err != nil {
				return err
			}

			defer closeService()

			report, err := services.DailyJob{Service: service, Date: date}.Run(ctx)

			if err != nil {
				lg.Error("daily sync failed", zap.Error(err))

				return err
			}

			logReport(lg, report)

			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Pin the run to a date (YYYY-MM-DD) instead of today")

	return cmd
}
