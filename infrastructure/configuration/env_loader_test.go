package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment\n\nENCRYPTION_KEY=\"abc123\"\nDB_VENDOR=mssql\nPRESET_KEY=from-file\nnot a pair\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PRESET_KEY", "from-env")
	t.Setenv("ENCRYPTION_KEY", "")
	os.Unsetenv("ENCRYPTION_KEY")
	t.Setenv("DB_VENDOR", "")
	os.Unsetenv("DB_VENDOR")

	LoadEnvFromFile(path, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "abc123", os.Getenv("ENCRYPTION_KEY"))
	assert.Equal(t, "mssql", os.Getenv("DB_VENDOR"))
	assert.Equal(t, "from-env", os.Getenv("PRESET_KEY"))
}
