package dataset_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DeafMist/transit-proximity/internal/dataset"
	"github.com/stretchr/testify/require"
)

type record struct {
	Line int
	Text string
}

func TestScanRecordsSkipsHeaderAndBlanks(t *testing.T) {
	input := "prop_id,full_address\n  P1,one  \n\n   \nP2,two\r\nP3,three"

	var got []record
	err := dataset.ScanRecords(strings.NewReader(input), func(n int, line string) {
		got = append(got, record{n, line})
	})
	require.NoError(t, err)
	require.Equal(t, []record{{2, "P1,one"}, {5, "P2,two"}, {6, "P3,three"}}, got)
}

func TestScanRecordsHeaderOnly(t *testing.T) {
	called := false
	err := dataset.ScanRecords(strings.NewReader("stop_id,stop_name,stop_lat,stop_lon\n"), func(int, string) {
		called = true
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestScanRecordsLongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)

	var got string
	err := dataset.ScanRecords(strings.NewReader("header\n"+long+"\n"), func(_ int, line string) {
		got = line
	})
	require.NoError(t, err)
	require.Len(t, got, len(long))
}

func TestOpenMissingInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")

	_, err := dataset.Open(path)
	var missing *dataset.MissingInputError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, path, missing.Path)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "out.json")

	payload := []map[string]any{{"property_id": "P1", "nearest_station": "Flinders Street & Co"}}
	require.NoError(t, dataset.WriteJSON(path, payload))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[\n    {\n        \"nearest_station\": \"Flinders Street & Co\",\n        \"property_id\": \"P1\"\n    }\n]\n", string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteJSONFailureKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))

	err := dataset.WriteJSON(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
