package fxsync

type Storage interface {
	// Store journals records by their unique key. Storing a key twice must
	// not create a second row.
	Store(records []RateRecord) ([]StoredRate, error)
	// Filter drops records whose key has already been journaled.
	Filter(records []RateRecord) ([]RateRecord, error)
	GetStorageProviderName() string
	Migrate() error
	Drop() error
	Close() error
}
