package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRows(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "matches.csv")
	content := "Tournament,Date,Surface,Player_1,Player_2,Winner\n" +
		"Wimbledon,2023-07-03,Grass,A,B,A\n" +
		"Rome Masters,2023-05-10,Clay,C,D,D\n" +
		"Short Row,2023-05-11\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	rows, err := LoadRows(csvPath)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Wimbledon", rows[0]["Tournament"])
	assert.Equal(t, "Grass", rows[0]["Surface"])
	assert.Equal(t, "D", rows[1]["Winner"])

	// Rows shorter than the header keep the fields they have.
	assert.Equal(t, "Short Row", rows[2]["Tournament"])
	_, hasSurface := rows[2]["Surface"]
	assert.False(t, hasSurface)
}

func TestLoadRowsMissingFile(t *testing.T) {
	_, err := LoadRows(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestFindCSV(t *testing.T) {
	dir := t.TempDir()

	_, err := findCSV(dir)
	assert.Error(t, err, "no CSV yet")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "atp_tennis.csv"), []byte("a,b\n"), 0o644))

	path, err := findCSV(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "atp_tennis.csv"), path)
}
