package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/services"
)

func backfill() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fill the preceding weekend from Friday and Monday rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, cleanup := newLogger(debug)
			defer cleanup()

			ctx := cmd.Context()

			config, err := getConfig(ctx, lg)

			if err != nil {
				return err
			}

			// The weekend blend needs daily closes, so it always goes
			// through ExchangeRate-API regardless of the daily provider.
			service, closeService, err := buildService(lg, config, fxsync.ExchangeRateAPIProvider, false, false)

			if err != nil {
				return err
			}

			defer closeService()

			report, err := services.BackfillJob{Service: service, Force: force}.Run(ctx)

			if errors.Is(err, services.ErrNotMonday) {
				lg.Info("skipping backfill, not a Monday")

				return nil
			}

			if err != nil {
				lg.Error("weekend backfill failed", zap.Error(err))

				return err
			}

			logReport(lg, report)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Run off-schedule against the most recent Monday")

	return cmd
}
