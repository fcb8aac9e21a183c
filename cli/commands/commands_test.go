package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/expand-go/cli/internal/config"
	"github.com/satishbabariya/expand-go/cli/internal/report"
	"github.com/satishbabariya/expand-go/cli/internal/ui"
	"github.com/satishbabariya/expand-go/collect"
)

const mainRS = `macro_rules! m { () => { 1 + 2 } }
fn f() { m!(); nope!(); }
`

func setupFs(t *testing.T) afero.Fs {
	t.Helper()
	prevFs, prevOut, prevErr := config.AppFs, ui.Out, ui.Err
	fs := afero.NewMemMapFs()
	config.AppFs = fs
	t.Cleanup(func() {
		config.AppFs, ui.Out, ui.Err = prevFs, prevOut, prevErr
	})
	require.NoError(t, afero.WriteFile(fs, "src/main.rs", []byte(mainRS), 0644))
	return fs
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	ui.Out, ui.Err = &out, &errOut
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestExpandPrintsExpansionsAndDiagnostics(t *testing.T) {
	setupFs(t)
	out, errOut, err := run(t, "expand", "src/main.rs")
	require.NoError(t, err)
	assert.Contains(t, out, "src/main.rs:2:")
	assert.Contains(t, out, "m!")
	assert.Contains(t, out, "1 + 2")
	assert.Contains(t, errOut, "nope!")
	assert.Contains(t, out, "Unresolved")
	assert.Contains(t, out, "• nope!")
}

func TestExpandMarkdown(t *testing.T) {
	setupFs(t)
	out, _, err := run(t, "expand", "--markdown", "src/main.rs")
	require.NoError(t, err)
	assert.Contains(t, out, "Expansions of")
	assert.Contains(t, out, "Unresolved")
}

func TestExpandMissingFile(t *testing.T) {
	setupFs(t)
	_, _, err := run(t, "expand", "src/missing.rs")
	assert.ErrorContains(t, err, "read src/missing.rs")
}

func TestExpansionMarkdownDocument(t *testing.T) {
	setupFs(t)
	g := &globals{v: viper.New()}
	require.NoError(t, g.setup())
	w, err := g.openWorkspace([]string{"src/main.rs"})
	require.NoError(t, err)
	res, err := w.expand(context.Background(), 0)
	require.NoError(t, err)

	md := expansionMarkdown(w, res)
	assert.Contains(t, md, "# Expansions of `src/main.rs`")
	assert.Contains(t, md, "```rust\n1 + 2\n```")
	assert.Contains(t, md, "- `nope`")
}

func TestStatsWritesReport(t *testing.T) {
	setupFs(t)
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "report.db")
	out, _, err := run(t, "stats", "--report-dsn", dsn, "src/main.rs")
	require.NoError(t, err)
	assert.Contains(t, out, "Outcomes in 1 files")
	assert.Contains(t, out, "outcome")
	assert.Contains(t, out, "unresolved")
	assert.Contains(t, out, "Stored 2 records")

	r, err := report.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer r.Close()
	totals, err := r.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ok": 1, "unresolved": 1}, totals)
}

func TestStatsStrictFailsOnErrors(t *testing.T) {
	setupFs(t)
	_, _, err := run(t, "stats", "--strict", "src/main.rs")
	assert.ErrorContains(t, err, "expansion failed with 1 errors")
}

func TestStatsStrictPassesWithoutErrors(t *testing.T) {
	fs := setupFs(t)
	require.NoError(t, afero.WriteFile(fs, "src/clean.rs", []byte("macro_rules! m { () => { 1 } }\nfn f() { m!(); }\n"), 0644))
	out, _, err := run(t, "stats", "--strict", "src/clean.rs")
	require.NoError(t, err)
	assert.Contains(t, out, "Outcomes in 1 files")
}

func TestInitWritesDefaults(t *testing.T) {
	fs := setupFs(t)
	out, _, err := run(t, "init", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote .expand-go.yaml")

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(".expand-go.yaml")
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, collect.DefaultMaxDepth, v.GetInt("max_depth"))
	assert.Equal(t, "1.0.0", v.GetString("config_version"))

	_, _, err = run(t, "init", "--yes")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "init", "--yes", "--force")
	assert.NoError(t, err)
}

func TestConfigDepthApplies(t *testing.T) {
	fs := setupFs(t)
	require.NoError(t, afero.WriteFile(fs, "src/nested.rs", []byte(`macro_rules! inner { () => { 1 } }
macro_rules! outer { () => { fn g() { inner!() } } }
outer!();
`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/etc/expand.yaml", []byte("max_depth: 1\n"), 0644))

	out, _, err := run(t, "--config", "/etc/expand.yaml", "stats", "src/nested.rs")
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	out, errOut, err := run(t, "--config", "/etc/expand.yaml", "expand", "src/nested.rs")
	require.NoError(t, err)
	assert.Contains(t, out, "outer!")
	assert.NotContains(t, out, "inner!  [")
	assert.Contains(t, errOut, "depth 1")
}

func TestVersion(t *testing.T) {
	setupFs(t)
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "expand-go version")

	out, _, err = run(t, "version", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "Config Version: 1.0.0")
}

func TestPosition(t *testing.T) {
	text := "ab\ncd\n"
	line, col := position(text, 0)
	assert.Equal(t, []int{1, 1}, []int{line, col})
	line, col = position(text, 4)
	assert.Equal(t, []int{2, 2}, []int{line, col})
	line, col = position(text, 100)
	assert.Equal(t, []int{3, 1}, []int{line, col})
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "derive(Clone)", label(collect.Site{Name: "Clone", Kind: collect.Derive}))
	assert.Equal(t, "concat!", label(collect.Site{Name: "concat", Kind: collect.Eager}))
}
