package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"doctemplates/config"
	"doctemplates/emit"
	"doctemplates/generate"
	"doctemplates/storage"
)

var (
	cfgFile    string
	sourcePath string
	dataDir    string
	distDir    string
	verbose    bool
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:           "doctemplates",
	Short:         "doctemplates – built-in document template resources",
	Long:          "doctemplates splits the built-in PPT themes of shared-types into per-theme manifests and builds the dist artifacts from them.\nWithout a subcommand it runs extract.",
	Args:          cobra.NoArgs,
	RunE:          runExtract,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract built-in PPT themes into data/",
	Long:  "Read BUILT_IN_PPT_THEMES from the shared-types source and rewrite data/ with one manifest per theme plus _meta.json.",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate dist artifacts from data/",
	Long:  "Generate the TypeScript modules and per-category JSON files under dist/ from the data/ tree.",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var digestCmd = &cobra.Command{
	Use:   "digest [dir]",
	Short: "Print the content digest of a generated tree",
	Long:  "Print a BLAKE3 digest over every file of a directory (default: the data directory). Identical trees print identical digests.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDigest,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage doctemplates configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default doctemplates.yaml (or the file named by --config).",
	Args:  cobra.NoArgs,
	RunE:  runConfigGenerate,
}

func init() {
	rootCmd.Version = appVersion
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./"+config.DefaultFile+" if present)")
	flags.StringVar(&sourcePath, "source", "", "Path to shared-types src/index.ts")
	flags.StringVar(&dataDir, "data-dir", "", "Data directory (default: data)")
	flags.StringVar(&distDir, "dist-dir", "", "Dist directory (default: dist)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(extractCmd, buildCmd, digestCmd, configCmd)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("source") {
		cfg.Source = sourcePath
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("dist-dir") {
		cfg.DistDir = distDir
	}

	return cfg, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	written, err := emit.Run(emit.Options{
		Source:  cfg.Source,
		Marker:  cfg.Marker,
		DataDir: cfg.DataDir,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d ppt themes and category definitions to %s\n", written, cfg.DataDir)
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sum, err := generate.Run(generate.Options{DataDir: cfg.DataDir, DistDir: cfg.DistDir}, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "built %d themes, %d categories, %d document templates (%d in json) into %s\n",
		sum.Themes, sum.Categories, sum.DocTemplates, sum.JSONTemplates, cfg.DistDir)
	return nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dir := cfg.DataDir
	if len(args) == 1 {
		dir = args[0]
	}

	sum, err := storage.Digest(dir)
	if err != nil {
		return fmt.Errorf("digest %s: %w", dir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, dir)
	return nil
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultFile
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated default config file: %s\n", path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
