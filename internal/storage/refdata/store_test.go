package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksiddharth/scripwatch/internal/common"
)

func writeScripMaster(t *testing.T, dir, exchange, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, exchange+".csv"), []byte(content), 0644))
}

func TestScripCodes(t *testing.T) {
	dir := t.TempDir()
	writeScripMaster(t, dir, "bse", "company_name,code\nReliance Industries Ltd,500325\nTata Consultancy Services Ltd,532540\n,999999\n")

	store := NewStore(common.NewSilentLogger(), dir)

	table, err := store.ScripCodes("bse")
	require.NoError(t, err)
	require.Len(t, table, 2, "blank names are skipped")
	assert.Equal(t, "500325", table[0].Code)
	assert.Equal(t, "bse", table[0].Exchange)
}

func TestLookupCode(t *testing.T) {
	dir := t.TempDir()
	writeScripMaster(t, dir, "bse", "company_name,code\nReliance Industries Ltd,500325\n")

	store := NewStore(common.NewSilentLogger(), dir)

	code, ok := store.LookupCode("bse", "reliance industries ltd")
	require.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "500325", code)

	_, ok = store.LookupCode("bse", "Unknown Company")
	assert.False(t, ok)
}

func TestMissingScripMaster(t *testing.T) {
	store := NewStore(common.NewSilentLogger(), t.TempDir())

	table, err := store.ScripCodes("nse")
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestMalformedHeader(t *testing.T) {
	dir := t.TempDir()
	writeScripMaster(t, dir, "bse", "Security Name,Security Id\nReliance,500325\n")

	store := NewStore(common.NewSilentLogger(), dir)

	_, err := store.ScripCodes("bse")
	require.Error(t, err)
}
