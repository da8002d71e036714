package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"doctemplates/emit"
	"doctemplates/theme"
)

// resetFlags restores every flag of cmd and its subcommands to its default so
// each execute starts from a fresh command line.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExtractAndBuild(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.ts")
	content := theme.DefaultMarker + `{id:"dark",name:"Dark",colors:{bg:"#000"},fonts:{body:"Sans"}}];`
	require.NoError(t, os.WriteFile(source, []byte(content), 0o644))

	dataDir := filepath.Join(dir, "data")
	distDir := filepath.Join(dir, "dist")
	cfgPath := filepath.Join(dir, "doctemplates.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dist_dir: dist\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "--source", source, "--data-dir", dataDir, "--dist-dir", distDir)
	require.NoError(t, err)
	require.Contains(t, out, "wrote 1 ppt themes")

	_, err = os.Stat(filepath.Join(dataDir, "ppt-theme", "dark", "manifest.json"))
	require.NoError(t, err)

	out, err = execute(t, "build", "--config", cfgPath, "--source", source, "--data-dir", dataDir, "--dist-dir", distDir)
	require.NoError(t, err)
	require.Contains(t, out, "built 1 themes, 8 categories")

	first, err := execute(t, "digest", "--config", cfgPath, "--data-dir", dataDir)
	require.NoError(t, err)

	_, err = execute(t, "extract", "--config", cfgPath, "--source", source, "--data-dir", dataDir)
	require.NoError(t, err)

	second, err := execute(t, "digest", "--config", cfgPath, "--data-dir", dataDir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestExtractMarkerMissing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.ts")
	require.NoError(t, os.WriteFile(source, []byte("export const NOTHING = [];"), 0o644))
	dataDir := filepath.Join(dir, "data")
	cfgPath := filepath.Join(dir, "doctemplates.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dist_dir: dist\n"), 0o644))

	_, err := execute(t, "extract", "--config", cfgPath, "--source", source, "--data-dir", dataDir)
	require.ErrorIs(t, err, theme.ErrMarkerNotFound)

	_, statErr := os.Stat(dataDir)
	require.True(t, os.IsNotExist(statErr))
}

func TestFlagsDoNotCarryOverBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "index.ts")
	require.NoError(t, os.WriteFile(source, []byte(theme.DefaultMarker+`{id:"dark",name:"Dark"}];`), 0o644))
	dataDir := filepath.Join(dir, "data")

	_, err := execute(t, "extract", "--source", source, "--data-dir", dataDir, "-v")
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "doctemplates.yaml")
	cfg := "source: " + filepath.Join(dir, "missing.ts") + "\ndata_dir: " + dataDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err = execute(t, "extract", "--config", cfgPath)
	require.ErrorIs(t, err, emit.ErrSourceFileMissing)
	require.False(t, verbose)
	require.Empty(t, sourcePath)
}

func TestConfigGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctemplates.yaml")

	out, err := execute(t, "config", "generate", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "Generated default config file")

	_, err = execute(t, "config", "generate", "--config", path)
	require.Error(t, err)
}
