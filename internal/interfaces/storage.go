package interfaces

import (
	"context"

	"github.com/ksiddharth/scripwatch/internal/models"
)

// KeyValueStorage is simple string KV persistence for settings.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// RunStorage persists batch-run summaries for later inspection.
type RunStorage interface {
	SaveReport(ctx context.Context, report *models.BatchReport) error
	GetReport(ctx context.Context, runID string) (*models.BatchReport, error)
	ListReports(ctx context.Context, limit int) ([]models.BatchReport, error)
}

// RefDataStore supplies instrument-identifier lookup tables.
type RefDataStore interface {
	// ScripCodes returns the full lookup table for an exchange.
	ScripCodes(exchange string) ([]models.ScripCode, error)

	// LookupCode resolves a company name to its exchange-native code.
	LookupCode(exchange, companyName string) (string, bool)
}

// StorageManager wires the storage areas together.
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	RunStorage() RunStorage
	RefData() RefDataStore
	Close() error
}
