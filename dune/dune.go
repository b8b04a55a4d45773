// Package dune uploads rate batches to a Dune Analytics table.
package dune

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
)

const DefaultURL = "https://api.dune.com"

var csvHeader = []string{"date", "currency", "fx_rate", "inverse_fx_rate"}

type (
	Client struct {
		client    *http.Client
		lg        *zap.Logger
		url       string
		apiKey    string
		namespace string
		table     string
	}

	columnSchema struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Nullable bool   `json:"nullable"`
	}

	createTableRequest struct {
		Namespace   string         `json:"namespace"`
		TableName   string         `json:"table_name"`
		Description string         `json:"description"`
		Schema      []columnSchema `json:"schema"`
		IsPrivate   bool           `json:"is_private"`
	}

	insertResponse struct {
		RowsWritten int `json:"rows_written"`
	}
)

func NewClient(lg *zap.Logger, client *http.Client, url, apiKey, namespace, table string) *Client {
	if client == nil {
		client = &http.Client{}
	}

	if url == "" {
		url = DefaultURL
	}

	return &Client{
		client:    client,
		lg:        lg,
		url:       url,
		apiKey:    apiKey,
		namespace: namespace,
		table:     table,
	}
}

// EnsureTable creates the destination table. A table that already exists is
// not an error.
func (c *Client) EnsureTable(ctx context.Context) error {
	payload, err := json.Marshal(createTableRequest{
		Namespace:   c.namespace,
		TableName:   c.table,
		Description: "Daily FX rates against the base currency",
		Schema: []columnSchema{
			{Name: "date", Type: "date"},
			{Name: "currency", Type: "varchar"},
			{Name: "fx_rate", Type: "double"},
			{Name: "inverse_fx_rate", Type: "double"},
		},
	})

	if err != nil {
		return err
	}

	status, body, err := c.post(ctx, c.url+"/api/v1/table/create", "application/json", payload)

	if err != nil {
		return err
	}

	if status == http.StatusOK {
		c.lg.Info("destination table created", zap.String("table", c.qualifiedName()))
		return nil
	}

	if strings.Contains(string(body), "already exists") {
		c.lg.Info("destination table already exists", zap.String("table", c.qualifiedName()))
		return nil
	}

	return &fxsync.UploadError{Status: status, Body: string(body)}
}

// Clear removes all rows from the destination table.
func (c *Client) Clear(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/api/v1/table/%s/%s/clear", c.url, c.namespace, c.table)

	status, body, err := c.post(ctx, endpoint, "", nil)

	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return &fxsync.UploadError{Status: status, Body: string(body)}
	}

	c.lg.Info("destination table cleared", zap.String("table", c.qualifiedName()))

	return nil
}

// Insert appends a batch as CSV and reports rows written. A rejected batch
// yields an UploadError and is not retried within the run.
func (c *Client) Insert(ctx context.Context, records []fxsync.RateRecord) (int, error) {
	payload, err := encodeCSV(records)

	if err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/api/v1/table/%s/%s/insert", c.url, c.namespace, c.table)

	status, body, err := c.post(ctx, endpoint, "text/csv", payload)

	if err != nil {
		return 0, err
	}

	if status != http.StatusOK {
		return 0, &fxsync.UploadError{Status: status, Body: string(body)}
	}

	var result insertResponse

	if err := json.Unmarshal(body, &result); err != nil {
		// A 200 with an unreadable body still uploaded the batch.
		result.RowsWritten = len(records)
	}

	c.lg.Info("uploaded batch",
		zap.String("table", c.qualifiedName()),
		zap.Int("rows", result.RowsWritten),
	)

	return result.RowsWritten, nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))

	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("X-DUNE-API-KEY", c.apiKey)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.client.Do(req)

	if err != nil {
		return 0, nil, err
	}

	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)

	if err != nil {
		return res.StatusCode, nil, err
	}

	return res.StatusCode, body, nil
}

func (c *Client) qualifiedName() string {
	return fmt.Sprintf("%s.%s", c.namespace, c.table)
}

func encodeCSV(records []fxsync.RateRecord) ([]byte, error) {
	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, record := range records {
		row := []string{
			record.Date.Format(fxsync.DateLayout),
			record.Quote,
			record.Rate.String(),
			record.InverseRate.String(),
		}

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()

	return buf.Bytes(), writer.Error()
}
