package modelcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadOverlay_EntityTypeFromFileName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiltak.yml", "newButtonLabel: Legg til tiltak\n")
	writeFile(t, dir, "notes.txt", "ignored")

	r := NewRegistry()
	require.NoError(t, r.LoadOverlay(dir))
	cfg, err := r.Process("tiltak")
	require.NoError(t, err)
	require.Equal(t, "Legg til tiltak", cfg.NewButtonLabel)
}

func TestLoadOverlay_MissingDir(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.LoadOverlay(filepath.Join(t.TempDir(), "absent")))
}
