package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/sterilizer/internal/logic"
)

// exercise runs the common store contract against s.
func exercise(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get(logic.KeyTempThreshold)
	require.NoError(t, err)
	assert.False(t, ok, "empty store")

	require.NoError(t, s.Set(logic.KeyTempThreshold, 185))
	require.NoError(t, s.Set(logic.KeyTimeThreshold, 90))
	require.NoError(t, s.Set(logic.KeyTempThreshold, 186))

	v, ok, err := s.Get(logic.KeyTempThreshold)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 186, v)

	v, ok, err = s.Get(logic.KeyTimeThreshold)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90, v)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	exercise(t, s)
	assert.NoError(t, s.Close())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setpoints.yaml")

	s, err := OpenFile(path)
	require.NoError(t, err)
	exercise(t, s)

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(logic.KeyTempThreshold)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 186, v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "temp_threshold: 186")
}

func TestFileOutOfRangeValuesAreReturned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("temp_threshold: 255\n"), 0o644))

	s, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := s.Get(logic.KeyTempThreshold)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 255, v, "range checks are not the store's job")
}

func TestFileEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setpoints.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(logic.KeyTimeThreshold, 60))
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("temp_threshold: [oops"), 0o644))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestFileSetFailureKeepsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "setpoints.yaml")

	s, err := OpenFile(path)
	require.NoError(t, err)
	assert.Error(t, s.Set(logic.KeyTempThreshold, 100))

	_, ok, err := s.Get(logic.KeyTempThreshold)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sterilizer.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(logic.KeyTimeThreshold, 45))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(logic.KeyTimeThreshold)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 45, v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		path string
		want any
	}{
		"empty":  {"", &Memory{}},
		"memory": {":memory:", &Memory{}},
		"yaml":   {filepath.Join(dir, "setpoints.yaml"), &File{}},
		"db":     {filepath.Join(dir, "setpoints.db"), &SQLite{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Open(tc.path)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tc.want, s)
		})
	}
}

func TestStoreFeedsController(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set(logic.KeyTempThreshold, 200))
	require.NoError(t, s.Set(logic.KeyTimeThreshold, 999))

	c := logic.NewController(logic.DefaultControllerConfig())
	err := c.Load(s)
	assert.ErrorIs(t, err, logic.ErrOutOfRange)
	assert.Equal(t, 200, c.TempThreshold())
	assert.Equal(t, logic.DefaultTimeThreshold, c.TimeThreshold())
}
