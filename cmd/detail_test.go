package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInterim_MissingFileIsNil(t *testing.T) {
	tbl, err := readInterim(t.TempDir(), "projects")
	require.NoError(t, err)
	assert.Nil(t, tbl)
}

func TestReadInterim_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "projects.csv"), nil, 0o644))

	_, err := readInterim(dir, "projects")
	require.Error(t, err)
}

func TestReadInterim_ReadsTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "topics.csv"),
		[]byte("project_id;code\n101;HORIZON-X\n"), 0o644))

	tbl, err := readInterim(dir, "topics")
	require.NoError(t, err)
	require.NotNil(t, tbl)
	assert.Equal(t, "HORIZON-X", tbl.Get(0, "code"))
}
