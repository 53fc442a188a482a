// Package storage provides the top-level StorageManager that coordinates
// the storage areas: internaldb and refdata.
package storage

import (
	"fmt"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/storage/internaldb"
	"github.com/ksiddharth/scripwatch/internal/storage/refdata"
)

// Manager implements interfaces.StorageManager.
type Manager struct {
	internal *internaldb.Store
	kv       interfaces.KeyValueStorage
	runs     interfaces.RunStorage
	refdata  *refdata.Store
	logger   *common.Logger
}

// NewManager creates a new StorageManager with the configured storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	internalStore, err := internaldb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	refStore := refdata.NewStore(logger, config.Storage.RefData.Path)

	logger.Info().
		Str("internal", config.Storage.Internal.Path).
		Str("refdata", config.Storage.RefData.Path).
		Msg("Storage manager initialized")

	return &Manager{
		internal: internalStore,
		kv:       internaldb.NewKVStorage(internalStore, logger),
		runs:     internaldb.NewRunStorage(internalStore, logger),
		refdata:  refStore,
		logger:   logger,
	}, nil
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

func (m *Manager) RunStorage() interfaces.RunStorage {
	return m.runs
}

func (m *Manager) RefData() interfaces.RefDataStore {
	return m.refdata
}

// Close closes all storage areas.
func (m *Manager) Close() error {
	if err := m.internal.Close(); err != nil {
		return fmt.Errorf("failed to close internal store: %w", err)
	}
	return nil
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
