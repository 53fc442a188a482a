// Package refdata loads instrument-identifier lookup tables from scrip
// master CSV files, one file per exchange under the configured directory.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

// Store reads scrip master files lazily and caches them in memory.
type Store struct {
	path   string
	logger *common.Logger

	mu     sync.Mutex
	tables map[string][]models.ScripCode
}

// NewStore creates a scrip master store rooted at path. Files are named
// <exchange>.csv with company_name and code columns.
func NewStore(logger *common.Logger, path string) *Store {
	return &Store{
		path:   path,
		logger: logger,
		tables: map[string][]models.ScripCode{},
	}
}

// ScripCodes returns the full lookup table for an exchange. A missing scrip
// master file yields an empty table, not an error.
func (s *Store) ScripCodes(exchange string) ([]models.ScripCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if table, ok := s.tables[exchange]; ok {
		return table, nil
	}

	file := filepath.Join(s.path, exchange+".csv")
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("file", file).Msg("Scrip master not found")
			s.tables[exchange] = []models.ScripCode{}
			return s.tables[exchange], nil
		}
		return nil, fmt.Errorf("failed to open scrip master %s: %w", file, err)
	}
	defer f.Close()

	table, err := parseScripMaster(f, exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scrip master %s: %w", file, err)
	}

	s.logger.Info().Str("exchange", exchange).Int("rows", len(table)).Msg("Scrip master loaded")
	s.tables[exchange] = table
	return table, nil
}

// LookupCode resolves a company name to its exchange-native code, compared
// case-insensitively.
func (s *Store) LookupCode(exchange, companyName string) (string, bool) {
	table, err := s.ScripCodes(exchange)
	if err != nil {
		return "", false
	}

	want := strings.TrimSpace(companyName)
	for _, sc := range table {
		if strings.EqualFold(sc.CompanyName, want) {
			return sc.Code, true
		}
	}
	return "", false
}

func parseScripMaster(r io.Reader, exchange string) ([]models.ScripCode, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameCol, codeCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "company_name":
			nameCol = i
		case "code":
			codeCol = i
		}
	}
	if nameCol < 0 || codeCol < 0 {
		return nil, fmt.Errorf("expected company_name and code columns, got %v", header)
	}

	var table []models.ScripCode
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if nameCol >= len(record) || codeCol >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		code := strings.TrimSpace(record[codeCol])
		if name == "" || code == "" {
			continue
		}
		table = append(table, models.ScripCode{
			CompanyName: name,
			Code:        code,
			Exchange:    exchange,
		})
	}
	return table, nil
}

// Ensure Store implements RefDataStore
var _ interfaces.RefDataStore = (*Store)(nil)
