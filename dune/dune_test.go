package dune_test

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/dune"
)

func testRecords() []fxsync.RateRecord {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return []fxsync.RateRecord{
		{
			Date:        day,
			Base:        "USD",
			Quote:       "EUR",
			Rate:        decimal.RequireFromString("1.08695652"),
			InverseRate: decimal.RequireFromString("0.92"),
			Source:      fxsync.ExchangeRateAPIProvider,
		},
		{
			Date:        day,
			Base:        "USD",
			Quote:       "JPY",
			Rate:        decimal.RequireFromString("0.00689085"),
			InverseRate: decimal.RequireFromString("145.12"),
			Source:      fxsync.ExchangeRateAPIProvider,
		},
	}
}

func TestClientInsert(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal("/api/v1/table/unhappyben/fx_rates/insert", r.URL.Path)
		assert.Equal("secret", r.Header.Get("X-DUNE-API-KEY"))
		assert.Equal("text/csv", r.Header.Get("Content-Type"))

		body, _ := ioutil.ReadAll(r.Body)
		assert.Equal(
			"date,currency,fx_rate,inverse_fx_rate\n"+
				"2024-01-01,EUR,1.08695652,0.92\n"+
				"2024-01-01,JPY,0.00689085,145.12\n",
			string(body),
		)

		_ = json.NewEncoder(w).Encode(map[string]int{"rows_written": 2})
	}))
	defer server.Close()

	client := dune.NewClient(zap.NewNop(), nil, server.URL, "secret", "unhappyben", "fx_rates")

	rows, err := client.Insert(context.Background(), testRecords())

	assert.NoError(err)
	assert.Equal(2, rows)
}

func TestClientInsertRejected(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("insufficient credits"))
	}))
	defer server.Close()

	client := dune.NewClient(zap.NewNop(), nil, server.URL, "secret", "unhappyben", "fx_rates")

	rows, err := client.Insert(context.Background(), testRecords())

	assert.Zero(rows)

	var uploadErr *fxsync.UploadError
	assert.True(errors.As(err, &uploadErr))
	assert.Equal(http.StatusPaymentRequired, uploadErr.Status)
	assert.Contains(uploadErr.Body, "insufficient credits")
}

func TestClientEnsureTable(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	var requested createTablePayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/v1/table/create", r.URL.Path)
		assert.Equal("application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&requested)
	}))
	defer server.Close()

	client := dune.NewClient(zap.NewNop(), nil, server.URL, "secret", "unhappyben", "fx_rates")

	assert.NoError(client.EnsureTable(context.Background()))
	assert.Equal("unhappyben", requested.Namespace)
	assert.Equal("fx_rates", requested.TableName)
	assert.Len(requested.Schema, 4)
	assert.Equal("date", requested.Schema[0].Name)
}

type createTablePayload struct {
	Namespace string `json:"namespace"`
	TableName string `json:"table_name"`
	Schema    []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"schema"`
}

func TestClientEnsureTableAlreadyExists(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"table unhappyben.fx_rates already exists"}`))
	}))
	defer server.Close()

	client := dune.NewClient(zap.NewNop(), nil, server.URL, "secret", "unhappyben", "fx_rates")

	assert.NoError(client.EnsureTable(context.Background()))
}

func TestClientClear(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	cleared := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/api/v1/table/unhappyben/fx_rates/clear", r.URL.Path)
		cleared = true
	}))
	defer server.Close()

	client := dune.NewClient(zap.NewNop(), nil, server.URL, "secret", "unhappyben", "fx_rates")

	assert.NoError(client.Clear(context.Background()))
	assert.True(cleared)
}

func TestClientClearFails(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := dune.NewClient(zap.NewNop(), nil, server.URL, "secret", "unhappyben", "fx_rates")

	var uploadErr *fxsync.UploadError
	err := client.Clear(context.Background())

	assert.True(errors.As(err, &uploadErr))
	assert.Equal(http.StatusForbidden, uploadErr.Status)
}
