package internaldb

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/models"
)

type runStorage struct {
	store  *Store
	logger *common.Logger
}

// NewRunStorage creates a new RunStorage backed by BadgerHold.
func NewRunStorage(store *Store, logger *common.Logger) *runStorage {
	return &runStorage{store: store, logger: logger}
}

func (s *runStorage) SaveReport(_ context.Context, report *models.BatchReport) error {
	if report.RunID == "" {
		return fmt.Errorf("report has no run ID")
	}
	if err := s.store.db.Upsert(report.RunID, report); err != nil {
		return fmt.Errorf("failed to save report '%s': %w", report.RunID, err)
	}
	s.logger.Debug().Str("run_id", report.RunID).Int("rows", report.Rows).Msg("Run report saved")
	return nil
}

func (s *runStorage) GetReport(_ context.Context, runID string) (*models.BatchReport, error) {
	var report models.BatchReport
	if err := s.store.db.Get(runID, &report); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("run '%s' not found", runID)
		}
		return nil, fmt.Errorf("failed to get run '%s': %w", runID, err)
	}
	return &report, nil
}

func (s *runStorage) ListReports(_ context.Context, limit int) ([]models.BatchReport, error) {
	var reports []models.BatchReport
	if err := s.store.db.Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}
