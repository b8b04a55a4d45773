package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/services"
)

func fixedNow(day string) func() time.Time {
	return func() time.Time {
		return date(day).Add(9 * time.Hour)
	}
}

func TestDailyJobUsesToday(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	fetcher := &MockFetcher{}
	uploader := &MockUploader{}

	fetcher.On("Fetch", mock.Anything, []time.Time{date("2024-01-02")}, "USD", mock.Anything).
		Return(rawRates("2024-01-02", map[string]float64{"EUR": 0.92}), nil)
	uploader.On("Insert", mock.Anything, mock.Anything).Return(1, nil)

	job := services.DailyJob{
		Service: services.SyncService{
			Fetcher:  fetcher,
			Uploader: uploader,
			Logger:   zap.NewNop(),
			Base:     "USD",
			Quotes:   []string{"EUR"},
		},
		Now: fixedNow("2024-01-02"),
	}

	report, err := job.Run(context.Background())

	assert.NoError(err)
	assert.Equal(1, report.Uploaded)
	fetcher.AssertExpectations(t)
}

func TestDailyJobPinnedDate(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	fetcher := &MockFetcher{}
	uploader := &MockUploader{}

	fetcher.On("Fetch", mock.Anything, []time.Time{date("2023-12-25")}, "USD", mock.Anything).
		Return(rawRates("2023-12-25", map[string]float64{"EUR": 0.92}), nil)
	uploader.On("Insert", mock.Anything, mock.Anything).Return(1, nil)

	job := services.DailyJob{
		Service: services.SyncService{
			Fetcher:  fetcher,
			Uploader: uploader,
			Logger:   zap.NewNop(),
			Base:     "USD",
			Quotes:   []string{"EUR"},
		},
		Date: date("2023-12-25"),
		Now:  fixedNow("2024-01-02"),
	}

	_, err := job.Run(context.Background())

	assert.NoError(err)
	fetcher.AssertExpectations(t)
}

func TestBackfillJobRequiresMonday(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	job := services.BackfillJob{
		Service: services.SyncService{Logger: zap.NewNop()},
		// 2024-01-03 is a Wednesday
		Now: fixedNow("2024-01-03"),
	}

	_, err := job.Run(context.Background())

	assert.True(errors.Is(err, services.ErrNotMonday))
}

func TestBackfillJobBuildsWeekendRows(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	fetcher := &MockFetcher{}
	uploader := &MockUploader{}

	// Monday 2024-01-08, Friday 2024-01-05
	fetcher.On("Fetch", mock.Anything, []time.Time{date("2024-01-05"), date("2024-01-08")}, "USD", mock.Anything).
		Return(fxsync.RawRates{
			Base:   "USD",
			Source: fxsync.ExchangeRateAPIProvider,
			Quotes: map[string]map[string]float64{
				"2024-01-05": {"JPY": 144.00},
				"2024-01-08": {"JPY": 147.00},
			},
		}, nil)

	uploader.On("Insert", mock.Anything, mock.MatchedBy(func(records []fxsync.RateRecord) bool {
		if len(records) != 2 {
			return false
		}

		saturday, sunday := records[0], records[1]

		return saturday.Date.Equal(date("2024-01-06")) &&
			saturday.InverseRate.String() == "145" &&
			sunday.Date.Equal(date("2024-01-07")) &&
			sunday.InverseRate.String() == "146"
	})).Return(2, nil)

	job := services.BackfillJob{
		Service: services.SyncService{
			Fetcher:  fetcher,
			Uploader: uploader,
			Logger:   zap.NewNop(),
			Base:     "USD",
			Quotes:   []string{"JPY"},
		},
		Now: fixedNow("2024-01-08"),
	}

	report, err := job.Run(context.Background())

	assert.NoError(err)
	assert.Equal(2, report.Fetched)
	assert.Equal(2, report.Uploaded)
	fetcher.AssertExpectations(t)
	uploader.AssertExpectations(t)
}

func TestBackfillJobForcedAnchorsPreviousMonday(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	fetcher := &MockFetcher{}
	uploader := &MockUploader{}

	// forced on Wednesday 2024-01-10: anchor Monday is 2024-01-08
	fetcher.On("Fetch", mock.Anything, []time.Time{date("2024-01-05"), date("2024-01-08")}, "USD", mock.Anything).
		Return(fxsync.RawRates{
			Base:   "USD",
			Source: fxsync.ExchangeRateAPIProvider,
			Quotes: map[string]map[string]float64{
				"2024-01-05": {"JPY": 144.00},
				"2024-01-08": {"JPY": 147.00},
			},
		}, nil)
	uploader.On("Insert", mock.Anything, mock.Anything).Return(2, nil)

	job := services.BackfillJob{
		Service: services.SyncService{
			Fetcher:  fetcher,
			Uploader: uploader,
			Logger:   zap.NewNop(),
			Base:     "USD",
			Quotes:   []string{"JPY"},
		},
		Force: true,
		Now:   fixedNow("2024-01-10"),
	}

	_, err := job.Run(context.Background())

	assert.NoError(err)
	fetcher.AssertExpectations(t)
}

func TestFullSyncJobDateRangeAndRecreate(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	fetcher := &MockFetcher{}
	uploader := &MockUploader{}

	expectedDates := []time.Time{
		date("2024-01-01"),
		date("2024-01-02"),
		date("2024-01-03"),
	}

	fetcher.On("Fetch", mock.Anything, expectedDates, "USD", mock.Anything).
		Return(rawRates("2024-01-02", map[string]float64{"EUR": 0.92}), nil)
	uploader.On("EnsureTable", mock.Anything).Return(nil)
	uploader.On("Clear", mock.Anything).Return(nil)
	uploader.On("Insert", mock.Anything, mock.Anything).Return(1, nil)

	job := services.FullSyncJob{
		Service: services.SyncService{
			Fetcher:       fetcher,
			Uploader:      uploader,
			Logger:        zap.NewNop(),
			Base:          "USD",
			Quotes:        []string{"EUR"},
			Interpolate:   true,
			RecreateTable: true,
		},
		Start: date("2024-01-01"),
		Now:   fixedNow("2024-01-04"),
	}

	report, err := job.Run(context.Background())

	assert.NoError(err)
	assert.Equal(1, report.Uploaded)
	fetcher.AssertExpectations(t)
	uploader.AssertExpectations(t)
}
