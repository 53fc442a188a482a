// Package bhav parses exchange bhavcopy snapshots and computes comparative
// analytics over them. Column names follow the NSE UDiFF layout.
package bhav

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

// Service implements BhavService.
type Service struct {
	logger *common.Logger
}

// NewService creates a new bhavcopy service.
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// equitySeries are the cash-market series kept by ParseEquityCSV.
var equitySeries = map[string]bool{"EQ": true, "BE": true}

var equityColumns = []string{"TradDt", "TckrSymb", "SctySrs", "FinInstrmNm", "ClsPric"}

var derivativeColumns = []string{
	"TckrSymb", "XpryDt", "StrkPric", "OptnTp", "FinInstrmNm",
	"ClsPric", "PrvsClsgPric", "UndrlygPric", "SttlmPric",
	"OpnIntrst", "ChngInOpnIntrst",
}

// ParseEquityCSV reads an equity bhavcopy, keeping EQ and BE series rows.
func (s *Service) ParseEquityCSV(r io.Reader) ([]models.EquityBar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read bhavcopy header: %w", err)
	}

	cols, err := columnIndex(header, equityColumns)
	if err != nil {
		return nil, err
	}

	var bars []models.EquityBar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bhavcopy row: %w", err)
		}

		series := field(record, cols["SctySrs"])
		if !equitySeries[series] {
			continue
		}

		bars = append(bars, models.EquityBar{
			TradeDate:    field(record, cols["TradDt"]),
			Series:       series,
			Ticker:       field(record, cols["TckrSymb"]),
			InstrumentNm: field(record, cols["FinInstrmNm"]),
			Close:        decimalField(record, cols["ClsPric"]),
		})
	}

	s.logger.Debug().Int("rows", len(bars)).Msg("Parsed equity bhavcopy")
	return bars, nil
}

// ParseDerivativesZip reads a zipped derivatives bhavcopy. The archive is
// expected to hold a single CSV member.
func (s *Service) ParseDerivativesZip(r io.ReaderAt, size int64) ([]models.DerivativeBar, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open bhavcopy archive: %w", err)
	}

	for _, file := range archive.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive member %s: %w", file.Name, err)
		}
		defer rc.Close()
		return s.parseDerivativesCSV(rc)
	}

	return nil, fmt.Errorf("no CSV member in bhavcopy archive")
}

func (s *Service) parseDerivativesCSV(r io.Reader) ([]models.DerivativeBar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read bhavcopy header: %w", err)
	}

	cols, err := columnIndex(header, derivativeColumns)
	if err != nil {
		return nil, err
	}

	var bars []models.DerivativeBar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bhavcopy row: %w", err)
		}

		ticker := field(record, cols["TckrSymb"])
		if ticker == "" {
			continue
		}

		openInt := decimalField(record, cols["OpnIntrst"])
		changeInOI := decimalField(record, cols["ChngInOpnIntrst"])

		bars = append(bars, models.DerivativeBar{
			Ticker:        ticker,
			Expiry:        field(record, cols["XpryDt"]),
			Strike:        decimalField(record, cols["StrkPric"]),
			OptionType:    field(record, cols["OptnTp"]),
			InstrumentNm:  field(record, cols["FinInstrmNm"]),
			Close:         decimalField(record, cols["ClsPric"]),
			PrevClose:     decimalField(record, cols["PrvsClsgPric"]),
			UnderlyingPx:  decimalField(record, cols["UndrlygPric"]),
			SettlePx:      decimalField(record, cols["SttlmPric"]),
			OpenInterest:  openInt,
			ChangeInOI:    changeInOI,
			PctChangeInOI: pctChangeInOI(openInt, changeInOI),
		})
	}

	s.logger.Debug().Int("rows", len(bars)).Msg("Parsed derivatives bhavcopy")
	return bars, nil
}

// pctChangeInOI computes the open-interest change relative to the prior
// session's open interest. Zero when the prior OI was zero.
func pctChangeInOI(openInt, changeInOI decimal.Decimal) decimal.Decimal {
	prev := openInt.Sub(changeInOI)
	if prev.IsZero() {
		return decimal.Zero
	}
	return changeInOI.Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
}

// columnIndex resolves the required column names to record indices.
func columnIndex(header, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	cols := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("bhavcopy missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func decimalField(record []string, i int) decimal.Decimal {
	v := field(record, i)
	if v == "" || v == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Ensure Service implements BhavService
var _ interfaces.BhavService = (*Service)(nil)
