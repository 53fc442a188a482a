package bhav

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ksiddharth/scripwatch/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ComparePrices computes the close-price percentage change for tickers
// present in both snapshots, sorted descending by change. Tickers whose
// first-snapshot close is zero are skipped.
func (s *Service) ComparePrices(first, second []models.EquityBar) []models.PriceChange {
	firstByTicker := make(map[string]models.EquityBar, len(first))
	for _, bar := range first {
		firstByTicker[bar.Ticker] = bar
	}

	var changes []models.PriceChange
	for _, bar := range second {
		prev, ok := firstByTicker[bar.Ticker]
		if !ok || prev.Close.IsZero() {
			continue
		}
		pct := bar.Close.Sub(prev.Close).Div(prev.Close).Mul(hundred).Round(2)
		changes = append(changes, models.PriceChange{
			InstrumentNm: bar.InstrumentNm,
			Ticker:       bar.Ticker,
			CloseFirst:   prev.Close,
			CloseSecond:  bar.Close,
			PctChange:    pct,
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].PctChange.GreaterThan(changes[j].PctChange)
	})
	return changes
}

// OptionChain merges the call and put legs by strike for one ticker and
// expiry, sorted ascending by strike.
func (s *Service) OptionChain(bars []models.DerivativeBar, ticker, expiry string) []models.OptionStrikeRow {
	byStrike := map[string]*models.OptionStrikeRow{}
	var order []string

	for _, bar := range bars {
		if bar.Ticker != ticker || bar.Expiry != expiry {
			continue
		}
		if bar.OptionType != "CE" && bar.OptionType != "PE" {
			continue
		}

		key := bar.Strike.String()
		row, ok := byStrike[key]
		if !ok {
			row = &models.OptionStrikeRow{Strike: bar.Strike}
			byStrike[key] = row
			order = append(order, key)
		}

		switch bar.OptionType {
		case "CE":
			row.CEClose = bar.Close
			row.CEOpenInt = bar.OpenInterest
			row.CEChangeInOI = bar.ChangeInOI
			row.CEPctOIChange = bar.PctChangeInOI
			row.HasCE = true
		case "PE":
			row.PEClose = bar.Close
			row.PEOpenInt = bar.OpenInterest
			row.PEChangeInOI = bar.ChangeInOI
			row.PEPctOIChange = bar.PctChangeInOI
			row.HasPE = true
		}
	}

	rows := make([]models.OptionStrikeRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byStrike[key])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Strike.LessThan(rows[j].Strike)
	})
	return rows
}

// OpenInterestShifts returns the contracts with the largest open-interest
// percentage moves, sorted descending by absolute change. Contracts with no
// prior open interest are skipped, since the move is undefined for them.
func (s *Service) OpenInterestShifts(bars []models.DerivativeBar, top int) []models.DerivativeBar {
	var shifts []models.DerivativeBar
	for _, bar := range bars {
		if bar.OpenInterest.Sub(bar.ChangeInOI).IsZero() {
			continue
		}
		shifts = append(shifts, bar)
	}

	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].PctChangeInOI.Abs().GreaterThan(shifts[j].PctChangeInOI.Abs())
	})

	if top > 0 && top < len(shifts) {
		shifts = shifts[:top]
	}
	return shifts
}

// PutCallRatios computes put/call open-interest ratios per ticker and expiry,
// sorted by ticker then expiry. A ratio with zero call OI is reported but
// marked undefined.
func (s *Service) PutCallRatios(bars []models.DerivativeBar) []models.PutCallRatio {
	type key struct{ ticker, expiry string }

	totals := map[key]*models.PutCallRatio{}
	var order []key

	for _, bar := range bars {
		if bar.OptionType != "CE" && bar.OptionType != "PE" {
			continue
		}

		k := key{bar.Ticker, bar.Expiry}
		pcr, ok := totals[k]
		if !ok {
			pcr = &models.PutCallRatio{Ticker: bar.Ticker, Expiry: bar.Expiry}
			totals[k] = pcr
			order = append(order, k)
		}

		if bar.OptionType == "PE" {
			pcr.PutOI = pcr.PutOI.Add(bar.OpenInterest)
		} else {
			pcr.CallOI = pcr.CallOI.Add(bar.OpenInterest)
		}
	}

	ratios := make([]models.PutCallRatio, 0, len(order))
	for _, k := range order {
		pcr := totals[k]
		if !pcr.CallOI.IsZero() {
			pcr.Ratio = pcr.PutOI.Div(pcr.CallOI).Round(4)
			pcr.Defined = true
		}
		ratios = append(ratios, *pcr)
	}

	sort.SliceStable(ratios, func(i, j int) bool {
		if ratios[i].Ticker != ratios[j].Ticker {
			return ratios[i].Ticker < ratios[j].Ticker
		}
		return ratios[i].Expiry < ratios[j].Expiry
	})
	return ratios
}
