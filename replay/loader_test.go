package replay

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sampleCSV = `time,open,high,low,close,volume
2024-02-01T00:00:00Z,1.1000,1.1010,1.0990,1.1005,120
2024-02-01 01:00:00,1.1005,1.1020,1.1000,1.1015,95
1706752800,1.1015,1.1030,1.1010,1.1025,80
`

func TestReadBars(t *testing.T) {
	bars, err := ReadBars(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, t0, bars[0].Time)
	assert.Equal(t, t0.Add(time.Hour), bars[1].Time)
	assert.Equal(t, t0.Add(2*time.Hour), bars[2].Time)
	assert.Equal(t, 1.1005, bars[0].Close)
	assert.Equal(t, 1.1020, bars[1].High)
	assert.Equal(t, 80.0, bars[2].Volume)
}

func TestReadBarsErrors(t *testing.T) {
	_, err := ReadBars(strings.NewReader("time,open,high,low,close\nyesterday,1,1,1,1\n"))
	assert.Error(t, err)

	_, err = ReadBars(strings.NewReader("time,open,high,low,close\n2024-02-02,1,1,1,1\n2024-02-01,1,1,1,1\n"))
	assert.ErrorIs(t, err, ErrUnordered)
}

func TestLoadBarsCompressed(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "eurusd.csv")
	require.NoError(t, os.WriteFile(plain, []byte(sampleCSV), 0o644))

	xzPath := filepath.Join(dir, "eurusd.csv.xz")
	f, err := os.Create(xzPath)
	require.NoError(t, err)
	w, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = w.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	gzPath := filepath.Join(dir, "eurusd.csv.gz")
	f, err = os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	for _, p := range []string{plain, xzPath, gzPath} {
		bars, err := LoadBars(p)
		require.NoError(t, err, p)
		assert.Len(t, bars, 3, p)
	}

	_, err = LoadBars(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-02-01", "2024-02-01T00:00", "2024-02-01T00:00:00Z", " 1706745600 "} {
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, t0, got, s)
	}
}
