package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	writer := NewCSVWriter(nil)
	err := writer.WriteSimpleCSV(path,
		[]string{"ID", "Value"},
		[][]string{{"a", "1"}, {"b", "2"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Value\na,1\nb,2\n", string(data))
}

func TestWriteAtomicCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	writer := NewCSVWriter(nil)
	err := writer.WriteAtomicCSV(path,
		[]string{"ID"},
		[][]string{{"first"}})
	require.NoError(t, err)

	// Rewriting replaces the file and leaves no temp files behind.
	err = writer.WriteAtomicCSV(path, []string{"ID"}, [][]string{{"second"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID\nsecond\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}

func TestWriteCSVQuotesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	writer := NewCSVWriter(nil)
	err := writer.WriteSimpleCSV(path,
		[]string{"CourseName"},
		[][]string{{"Physics, Mechanics"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"Physics, Mechanics"`))

	header, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CourseName"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "Physics, Mechanics", rows[0][0])
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n3,4\n"), 0644))

	header, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, header)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, rows)
}

func TestReadCSVErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := ReadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, _, err = ReadCSV(empty)
	assert.Error(t, err)
}
