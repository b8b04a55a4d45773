package storage_test

import (
	"errors"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/unhappyben/fx-sync/storage"
)

func TestConvertToProvidersFromStringSlice(t *testing.T) {
	assert := require.New(t)

	values := []struct {
		value    []string
		expected interface{}
		err      error
	}{
		{[]string{"mysql", "mongodb"}, []storage.Provider{storage.MySQL, storage.MongoDB}, nil},
		{[]string{"not-valid-value"}, []storage.Provider([]storage.Provider(nil)), errors.New("value not-valid-value is not valid Provider")},
	}

	for _, value := range values {
		providers, err := storage.ConvertToProvidersFromStringSlice(value.value)
		assert.Equal(providers, value.expected)
		assert.Equal(value.err, err)
	}
}

func TestNewStorageUnknownProvider(t *testing.T) {
	assert := require.New(t)

	st, err := storage.NewStorage(storage.Provider("redis"), nil)

	assert.Nil(st)
	assert.True(errors.Is(err, storage.ErrStorageNotFound))
}

func TestNewStorageMySQL(t *testing.T) {
	assert := require.New(t)

	st, err := storage.NewStorage(storage.MySQL, storage.MySQLConfig{
		ConnectionString: "journal:journal@tcp(localhost:3306)/journaldb",
		TableName:        "fx_rate_journal",
	})

	assert.NoError(err)
	assert.NotNil(st)
	assert.Equal("mysql", st.GetStorageProviderName())
}
