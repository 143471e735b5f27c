package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSlugCommand(t *testing.T) {
	out, err := run(t, "slug", "الأخبار", "العاجلة", "اليوم")
	require.NoError(t, err)
	assert.Equal(t, "alakhbar-alaajlh-alyoom\n", out)

	_, err = run(t, "slug")
	assert.Error(t, err)
}

func TestMigrateDropRefusedInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("DATABASE_URL", "postgres://unused")

	_, err := run(t, "migrate", "--drop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to drop")
}

func TestExportCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "posts", "7"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "posts", "7", "meta.json"), []byte("{}\n"), 0o644))
	t.Setenv("MIRROR_ROOT", root)

	archive := filepath.Join(t.TempDir(), "mirror.zip")
	_, err := run(t, "export", "--out", archive)
	require.NoError(t, err)

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"posts/7/meta.json"}, names)
}
