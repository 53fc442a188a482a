package bhav

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/models"
)

const equityCSV = `TradDt,BizDt,Sgmt,Src,FinInstrmTp,FinInstrmId,ISIN,TckrSymb,SctySrs,XpryDt,FininstrmActlXpryDt,StrkPric,OptnTp,FinInstrmNm,OpnPric,HghPric,LwPric,ClsPric
2026-03-13,2026-03-13,CM,NSE,STK,2885,INE002A01018,RELIANCE,EQ,,,,,Reliance Industries Limited,2900.00,2950.00,2890.00,2940.50
2026-03-13,2026-03-13,CM,NSE,STK,11536,INE467B01029,TCS,EQ,,,,,Tata Consultancy Services Limited,3800.00,3850.00,3790.00,3810.25
2026-03-13,2026-03-13,CM,NSE,STK,99999,INE000000000,SOMEBOND,GB,,,,,Some Government Bond,100.00,100.10,99.90,100.05
2026-03-13,2026-03-13,CM,NSE,STK,55555,INE111111111,TRUSTEE,BE,,,,,Trade To Trade Scrip,50.00,51.00,49.00,50.50
`

func TestParseEquityCSV(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	bars, err := svc.ParseEquityCSV(strings.NewReader(equityCSV))
	require.NoError(t, err)

	require.Len(t, bars, 3, "only EQ and BE series rows survive")
	assert.Equal(t, "RELIANCE", bars[0].Ticker)
	assert.Equal(t, "Reliance Industries Limited", bars[0].InstrumentNm)
	assert.True(t, bars[0].Close.Equal(decimal.RequireFromString("2940.50")))
	assert.Equal(t, "BE", bars[2].Series)
}

func TestParseEquityCSVMissingColumns(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	_, err := svc.ParseEquityCSV(strings.NewReader("SYMBOL,SERIES,CLOSE\nRELIANCE,EQ,2940.50\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

const derivCSV = `TradDt,TckrSymb,XpryDt,StrkPric,OptnTp,FinInstrmNm,ClsPric,PrvsClsgPric,UndrlygPric,SttlmPric,OpnIntrst,ChngInOpnIntrst
2026-03-13,NIFTY,2026-03-26,22000,CE,NIFTY 26Mar2026 22000 CE,150.50,140.00,22100.00,150.50,500000,100000
2026-03-13,NIFTY,2026-03-26,22000,PE,NIFTY 26Mar2026 22000 PE,80.25,95.00,22100.00,80.25,750000,-50000
2026-03-13,NIFTY,2026-03-26,22500,CE,NIFTY 26Mar2026 22500 CE,40.00,38.00,22100.00,40.00,300000,0
2026-03-13,NIFTY,2026-03-26,,,NIFTY 26Mar2026 FUT,22120.00,22050.00,22100.00,22120.00,900000,20000
2026-03-13,BANKNIFTY,2026-03-26,48000,PE,BANKNIFTY 26Mar2026 48000 PE,200.00,210.00,48100.00,200.00,100000,5000
`

func buildZip(t *testing.T, name, content string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestParseDerivativesZip(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	r := buildZip(t, "BhavCopy_NSE_FO_0_0_0_20260313_F_0000.csv", derivCSV)
	bars, err := svc.ParseDerivativesZip(r, r.Size())
	require.NoError(t, err)

	require.Len(t, bars, 5)
	assert.Equal(t, "CE", bars[0].OptionType)
	assert.True(t, bars[0].OpenInterest.Equal(decimal.NewFromInt(500000)))
	// prior OI 400000, change 100000 -> +25%
	assert.True(t, bars[0].PctChangeInOI.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "", bars[3].OptionType, "futures leg carries no option type")
}

func TestParseDerivativesZipWithoutCSV(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	r := buildZip(t, "readme.txt", "nothing here")
	_, err := svc.ParseDerivativesZip(r, r.Size())
	require.Error(t, err)
}

func parseDeriv(t *testing.T) []models.DerivativeBar {
	t.Helper()
	svc := NewService(common.NewSilentLogger())
	r := buildZip(t, "fo.csv", derivCSV)
	bars, err := svc.ParseDerivativesZip(r, r.Size())
	require.NoError(t, err)
	return bars
}

func TestComparePrices(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	first := []models.EquityBar{
		{Ticker: "RELIANCE", InstrumentNm: "Reliance Industries Limited", Close: decimal.NewFromInt(2900)},
		{Ticker: "TCS", InstrumentNm: "Tata Consultancy Services Limited", Close: decimal.NewFromInt(4000)},
		{Ticker: "ZEROCO", Close: decimal.Zero},
		{Ticker: "DELISTED", Close: decimal.NewFromInt(10)},
	}
	second := []models.EquityBar{
		{Ticker: "TCS", InstrumentNm: "Tata Consultancy Services Limited", Close: decimal.NewFromInt(3800)},
		{Ticker: "RELIANCE", InstrumentNm: "Reliance Industries Limited", Close: decimal.NewFromInt(3045)},
		{Ticker: "ZEROCO", Close: decimal.NewFromInt(5)},
		{Ticker: "NEWLISTING", Close: decimal.NewFromInt(100)},
	}

	changes := svc.ComparePrices(first, second)
	require.Len(t, changes, 2, "zero-base and one-sided tickers are skipped")

	assert.Equal(t, "RELIANCE", changes[0].Ticker, "sorted descending by change")
	assert.True(t, changes[0].PctChange.Equal(decimal.NewFromInt(5)))
	assert.True(t, changes[1].PctChange.Equal(decimal.NewFromInt(-5)))
}

func TestOptionChain(t *testing.T) {
	svc := NewService(common.NewSilentLogger())
	bars := parseDeriv(t)

	rows := svc.OptionChain(bars, "NIFTY", "2026-03-26")
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Strike.LessThan(rows[1].Strike), "sorted ascending by strike")
	assert.True(t, rows[0].HasCE)
	assert.True(t, rows[0].HasPE)
	assert.True(t, rows[0].CEClose.Equal(decimal.RequireFromString("150.50")))
	assert.True(t, rows[0].PEOpenInt.Equal(decimal.NewFromInt(750000)))

	assert.True(t, rows[1].HasCE)
	assert.False(t, rows[1].HasPE, "22500 has no put leg")
}

func TestOptionChainIgnoresOtherTickers(t *testing.T) {
	svc := NewService(common.NewSilentLogger())
	bars := parseDeriv(t)

	rows := svc.OptionChain(bars, "BANKNIFTY", "2026-03-26")
	require.Len(t, rows, 1)
	assert.False(t, rows[0].HasCE)
	assert.True(t, rows[0].HasPE)
}

func TestPutCallRatios(t *testing.T) {
	svc := NewService(common.NewSilentLogger())
	bars := parseDeriv(t)

	ratios := svc.PutCallRatios(bars)
	require.Len(t, ratios, 2)

	assert.Equal(t, "BANKNIFTY", ratios[0].Ticker, "sorted by ticker")
	assert.False(t, ratios[0].Defined, "no call OI for BANKNIFTY")

	nifty := ratios[1]
	assert.Equal(t, "NIFTY", nifty.Ticker)
	assert.True(t, nifty.Defined)
	assert.True(t, nifty.PutOI.Equal(decimal.NewFromInt(750000)))
	assert.True(t, nifty.CallOI.Equal(decimal.NewFromInt(800000)))
	assert.True(t, nifty.Ratio.Equal(decimal.RequireFromString("0.9375")))
}

func TestOpenInterestShifts(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	bars := []models.DerivativeBar{
		{Ticker: "NIFTY", OptionType: "CE", OpenInterest: decimal.NewFromInt(500000),
			ChangeInOI: decimal.NewFromInt(100000), PctChangeInOI: decimal.NewFromInt(25)},
		{Ticker: "BANKNIFTY", OptionType: "PE", OpenInterest: decimal.NewFromInt(300000),
			ChangeInOI: decimal.NewFromInt(-200000), PctChangeInOI: decimal.NewFromInt(-40)},
		// fresh listing: all OI is new, base was zero
		{Ticker: "NEWCO", OptionType: "CE", OpenInterest: decimal.NewFromInt(1000),
			ChangeInOI: decimal.NewFromInt(1000)},
	}

	shifts := svc.OpenInterestShifts(bars, 0)
	require.Len(t, shifts, 2)
	assert.Equal(t, "BANKNIFTY", shifts[0].Ticker)
	assert.Equal(t, "NIFTY", shifts[1].Ticker)

	top := svc.OpenInterestShifts(bars, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "BANKNIFTY", top[0].Ticker)
}
