package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileMissingIsEmpty(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "processed_jobs.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("123"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_jobs.json")

	first, err := OpenFile(path)
	require.NoError(t, err)
	first.Add("45")
	first.Add("123")
	require.NoError(t, first.Persist())

	other, err := OpenFile(path)
	require.NoError(t, err)
	other.Add("123")
	other.Add("45")

	reloaded, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, other.IDs(), reloaded.IDs())
	assert.True(t, reloaded.Contains("123"))
	assert.True(t, reloaded.Contains("45"))
}

func TestFileStorePersistWritesSortedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "processed_jobs.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	for _, id := range []string{"9", "10", "1"} {
		s.Add(id)
	}
	require.NoError(t, s.Persist())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var ids []string
	require.NoError(t, json.Unmarshal(data, &ids))
	assert.Equal(t, []string{"1", "10", "9"}, ids)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestFileStoreAddIsIdempotent(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, err)

	s.Add("7")
	s.Add("7")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"7"}, s.IDs())
}

func TestOpenFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestOpenFileEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestFileStorePersistIsWorldReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("права доступа POSIX")
	}
	path := filepath.Join(t.TempDir(), "processed_jobs.json")

	s, err := OpenFile(path)
	require.NoError(t, err)
	s.Add("1")
	require.NoError(t, s.Persist())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
