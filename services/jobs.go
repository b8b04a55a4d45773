package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/normalize"
)

var ErrNotMonday = errors.New("weekend backfill must run on a Monday")

func today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}

	t := now().UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type (
	// DailyJob uploads one day of rates, today unless pinned to a date.
	DailyJob struct {
		Service SyncService
		Date    time.Time
		Now     func() time.Time
	}

	// BackfillJob rebuilds the weekend that precedes a Monday run from the
	// surrounding Friday and Monday rates.
	BackfillJob struct {
		Service SyncService
		Force   bool
		Now     func() time.Time
	}

	// FullSyncJob re-uploads the whole series from a start date through
	// yesterday, recreating the destination table first.
	FullSyncJob struct {
		Service SyncService
		Start   time.Time
		Now     func() time.Time
	}
)

func (d DailyJob) Run(ctx context.Context) (fxsync.RunReport, error) {
	date := d.Date

	if date.IsZero() {
		date = today(d.Now)
	}

	d.Service.Logger.Info("starting daily sync", zap.String("date", date.Format(fxsync.DateLayout)))

	return d.Service.Execute(ctx, []time.Time{date})
}

func (b BackfillJob) Run(ctx context.Context) (fxsync.RunReport, error) {
	report := fxsync.RunReport{}
	monday := today(b.Now)

	if monday.Weekday() != time.Monday {
		if !b.Force {
			return report, ErrNotMonday
		}

		// Forced off-schedule: anchor on the most recent Monday.
		offset := (int(monday.Weekday()) + 6) % 7
		monday = monday.AddDate(0, 0, -offset)
	}

	friday := monday.AddDate(0, 0, -3)

	b.Service.Logger.Info("starting weekend backfill",
		zap.String("friday", friday.Format(fxsync.DateLayout)),
		zap.String("monday", monday.Format(fxsync.DateLayout)),
	)

	raw, err := b.Service.Fetcher.Fetch(ctx, []time.Time{friday, monday}, b.Service.Base, b.Service.Quotes)

	if err != nil {
		return report, err
	}

	records, skipped := normalize.WeekendRecords(b.Service.Logger, raw, friday, monday, b.Service.Quotes)

	report.Fetched = len(records)
	report.Skipped = skipped

	return report, b.Service.publish(ctx, records, &report)
}

func (f FullSyncJob) Run(ctx context.Context) (fxsync.RunReport, error) {
	end := today(f.Now).AddDate(0, 0, -1)

	dates := make([]time.Time, 0)
	for date := f.Start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date)
	}

	f.Service.Logger.Info("starting full sync",
		zap.String("start", f.Start.Format(fxsync.DateLayout)),
		zap.String("end", end.Format(fxsync.DateLayout)),
		zap.Int("days", len(dates)),
	)

	return f.Service.Execute(ctx, dates)
}
