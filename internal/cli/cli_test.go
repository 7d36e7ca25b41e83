package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
languages:
  - code: en
    name: English
levels:
  - name: Beginner
    books:
      - name: The Fox
        pages:
          - text: Cover
            front_cover: true
          - text: Once upon a time
  - name: Empty
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupFiles(t *testing.T) (dbPath, fixturePath string) {
	t.Helper()
	dir := t.TempDir()
	fixturePath = filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(fixturePath, []byte(fixture), 0o644))
	return filepath.Join(dir, "cli.db"), fixturePath
}

func TestImportThenTree(t *testing.T) {
	dbPath, fixturePath := setupFiles(t)

	out, err := run(t, "import", fixturePath, "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 levels, 1 books, 2 pages, 1 languages")

	out, err = run(t, "tree", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "Beginner")
	assert.Contains(t, out, "The Fox")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "Empty")
}

func TestImport_DryRun(t *testing.T) {
	dbPath, fixturePath := setupFiles(t)

	out, err := run(t, "import", fixturePath, "--dry-run", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Fixture is valid: 1 languages, 2 levels")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")
}

func TestImport_Errors(t *testing.T) {
	dbPath, _ := setupFiles(t)

	_, err := run(t, "import", filepath.Join(t.TempDir(), "missing.yaml"), "--db", dbPath)
	assert.ErrorContains(t, err, "read fixture")

	_, err = run(t, "import", "--db", dbPath)
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	dbPath, fixturePath := setupFiles(t)
	_, err := run(t, "import", fixturePath, "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)

	out, err := run(t, "sweep", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 2 levels and 1 books, removed 0 dangling references")
}

func TestCreateUser(t *testing.T) {
	dbPath, _ := setupFiles(t)
	t.Setenv(passwordEnv, "a-long-enough-password")

	out, err := run(t, "create-user", "--username", "editor", "--admin", "--token", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `Created admin "editor"`)
	assert.Contains(t, out, "API token: ")

	_, err = run(t, "create-user", "--username", "editor", "--db", dbPath, "--log-level", "error")
	assert.Error(t, err, "duplicate usernames are rejected")

	_, err = run(t, "create-user", "--db", dbPath)
	assert.ErrorContains(t, err, "username")
}

func TestSeedDemo(t *testing.T) {
	dbPath, _ := setupFiles(t)

	out, err := run(t, "seed-demo", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample catalog loaded")

	out, err = run(t, "seed-demo", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")

	out, err = run(t, "tree", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "The Tortoise and the Hare")
}

func TestAudit_Empty(t *testing.T) {
	dbPath, _ := setupFiles(t)

	out, err := run(t, "audit", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "ACTION")
	assert.Contains(t, out, "0 of 0 events")
}

func TestExport(t *testing.T) {
	dbPath, fixturePath := setupFiles(t)
	_, err := run(t, "import", fixturePath, "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)

	out, err := run(t, "export", "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "name: The Fox")
	assert.Contains(t, out, "front_cover: true")

	dir := filepath.Join(t.TempDir(), "md")
	out, err = run(t, "export", "--format", "markdown", "--out", dir, "--db", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 levels, 1 books, 2 pages")
	assert.FileExists(t, filepath.Join(dir, "Beginner", "The Fox.md"))

	_, err = run(t, "export", "--format", "pdf", "--db", dbPath, "--log-level", "error")
	assert.ErrorContains(t, err, "unknown format")
}
