package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	fxsync "github.com/unhappyben/fx-sync"
)

const MySQLTimeFormat = "2006-01-02 15:04:05"

type (
	mysqlStorage struct {
		ctx         context.Context
		db          *sql.DB
		tableName   string
		idGenerator IDGenerator
	}

	uuidGenerator struct{}
)

func (uuidGenerator) Generate() []byte {
	id, _ := uuid.New().MarshalBinary()

	return id
}

func NewMySQLStorage(config MySQLConfig) (fxsync.Storage, error) {
	db, err := sql.Open("mysql", config.ConnectionString)

	if err != nil {
		return nil, err
	}

	ctx := config.Ctx

	if ctx == nil {
		ctx = context.Background()
	}

	storage := NewMySQLStorageWithDB(ctx, db, config.TableName, config.IDGenerator)

	if config.Migrate {
		if err := storage.Migrate(); err != nil {
			return nil, err
		}
	}

	return storage, nil
}

func NewMySQLStorageWithDB(ctx context.Context, db *sql.DB, tableName string, generator IDGenerator) fxsync.Storage {
	if generator == nil {
		generator = uuidGenerator{}
	}

	return mysqlStorage{
		ctx:         ctx,
		db:          db,
		tableName:   tableName,
		idGenerator: generator,
	}
}

func (m mysqlStorage) Store(records []fxsync.RateRecord) ([]fxsync.StoredRate, error) {
	tx, err := m.db.Begin()

	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(m.ctx, fmt.Sprintf(
		"INSERT INTO %s (id, rate_date, base, currency, source, rate, inverse_rate, created_at) VALUES (?,?,?,?,?,?,?,?) ON DUPLICATE KEY UPDATE id = id;",
		m.tableName,
	))

	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	stored := make([]fxsync.StoredRate, 0, len(records))
	createdAt := time.Now().Format(MySQLTimeFormat)

	for _, record := range records {
		idBytes := m.idGenerator.Generate()

		_, err := stmt.ExecContext(
			m.ctx,
			idBytes,
			record.Date.Format(fxsync.DateLayout),
			record.Base,
			record.Quote,
			string(record.Source),
			record.Rate.String(),
			record.InverseRate.String(),
			createdAt,
		)

		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		id, err := uuid.FromBytes(idBytes)

		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		stored = append(stored, fxsync.StoredRate{
			RateRecord: record,
			ID:         id,
		})
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	return stored, nil
}

func (m mysqlStorage) Filter(records []fxsync.RateRecord) ([]fxsync.RateRecord, error) {
	if len(records) == 0 {
		return records, nil
	}

	start, end := dateRange(records)

	rows, err := m.db.QueryContext(m.ctx, fmt.Sprintf(
		"SELECT rate_date, base, currency, source FROM %s WHERE rate_date >= ? AND rate_date <= ?;",
		m.tableName,
	), start.Format(fxsync.DateLayout), end.Format(fxsync.DateLayout))

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	journaled := make(map[fxsync.RateKey]struct{})

	for rows.Next() {
		var rawDate, base, currency, source string

		if err := rows.Scan(&rawDate, &base, &currency, &source); err != nil {
			return nil, err
		}

		journaled[fxsync.RateKey{
			Date:   dateOnly(rawDate),
			Base:   base,
			Quote:  currency,
			Source: fxsync.Provider(source),
		}] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return withoutJournaled(records, journaled), nil
}

func (m mysqlStorage) GetStorageProviderName() string {
	return string(MySQL)
}

func (m mysqlStorage) Migrate() error {
	_, err := m.db.ExecContext(m.ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BINARY(16) PRIMARY KEY,
	rate_date DATE NOT NULL,
	base VARCHAR(3) NOT NULL,
	currency VARCHAR(3) NOT NULL,
	source VARCHAR(32) NOT NULL,
	rate DECIMAL(27, 8) NOT NULL,
	inverse_rate DECIMAL(27, 8) NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE KEY uploaded_rate (rate_date, base, currency, source)
);`, m.tableName))

	return err
}

func (m mysqlStorage) Drop() error {
	_, err := m.db.ExecContext(m.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", m.tableName))

	return err
}

func (m mysqlStorage) Close() error {
	return m.db.Close()
}

// dateOnly strips any time component the driver tacks onto a DATE column.
func dateOnly(value string) string {
	if len(value) > len(fxsync.DateLayout) {
		return value[:len(fxsync.DateLayout)]
	}

	return value
}

func dateRange(records []fxsync.RateRecord) (time.Time, time.Time) {
	start, end := records[0].Date, records[0].Date

	for _, record := range records[1:] {
		if record.Date.Before(start) {
			start = record.Date
		}

		if record.Date.After(end) {
			end = record.Date
		}
	}

	return start, end
}

func withoutJournaled(records []fxsync.RateRecord, journaled map[fxsync.RateKey]struct{}) []fxsync.RateRecord {
	remaining := make([]fxsync.RateRecord, 0, len(records))

	for _, record := range records {
		if _, exists := journaled[record.Key()]; exists {
			continue
		}

		remaining = append(remaining, record)
	}

	return remaining
}
