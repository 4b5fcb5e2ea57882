package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/colexport/pkg/config"

	// database/sql drivers selectable with --driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/snowflakedb/gosnowflake"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "colexport",
		Short: "colexport - Export query results as Arrow columnar data",
		Long: `colexport reads a finished query result row by row and writes it as
Arrow record batches in the IPC stream or file format, to a local file, S3 or
Google Cloud Storage.`,
		SilenceUsage: true,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "colexport v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newExportCommand())
	root.AddCommand(newInspectCommand())

	return root
}

func newExportCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("COLEXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a query result or JSON lines file",
		Long: `Export a query result or a JSON lines file as Arrow IPC.

Settings come from an optional YAML file (--config), then COLEXPORT_*
environment variables, then flags.

Examples:
  colexport export --driver pgx --dsn "$DATABASE_URL" \
    --query "SELECT * FROM people" --output s3://exports/people.arrows

  colexport export --input people.jsonl --column age:INT64 --column birthdate:DATE \
    --output people.arrow --format file --ipc-compression zstd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return runExportCommand(cmd.Context(), cmd.ErrOrStderr(), cfg)
		},
	}

	flags := exportCmd.Flags()
	flags.String("config", "", "Path to a YAML export configuration file")
	flags.String("driver", "", "database/sql driver: pgx, mysql or snowflake")
	flags.String("dsn", "", "Driver connection string")
	flags.String("query", "", "Query whose result is exported")
	flags.String("input", "", `JSON lines input file ("-" for stdin)`)
	flags.StringSlice("column", nil, "JSON lines column as name:TYPE (repeatable)")
	flags.Int("batch-capacity", config.DefaultBatchCapacity, "Maximum rows per record batch")
	flags.StringP("output", "o", "", "Output path or s3://, gs:// URL")
	flags.String("format", "stream", "IPC format: stream or file")
	flags.String("ipc-compression", "none", "IPC body compression: none, lz4 or zstd")
	flags.String("compression", "none", "Whole-output compression: none, gzip, snappy, lz4, zstd, s2, deflate")
	flags.Int("compression-level", 5, "Output compression level from 1 (fastest) to 9 (best)")
	flags.String("region", "", "AWS region for s3:// outputs")
	flags.String("endpoint", "", "Object store endpoint override")
	flags.String("credentials-file", "", "GCP service account file for gs:// outputs")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-encoding", "json", "Log encoding (json or console)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flags.Bool("trace", false, "Export tracing spans to stderr")

	bind := map[string]string{
		"config":            "config",
		"driver":            "source.driver",
		"dsn":               "source.dsn",
		"query":             "source.query",
		"input":             "source.input",
		"column":            "source.columns",
		"batch-capacity":    "export.batch_capacity",
		"output":            "output.url",
		"format":            "output.format",
		"ipc-compression":   "output.ipc_compression",
		"compression":       "output.compression",
		"compression-level": "output.compression_level",
		"region":            "output.region",
		"endpoint":          "output.endpoint",
		"credentials-file":  "output.credentials_file",
		"log-level":         "observability.log_level",
		"log-encoding":      "observability.log_encoding",
		"metrics-addr":      "observability.metrics_addr",
		"trace":             "observability.enable_tracing",
	}
	for flag, key := range bind {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return exportCmd
}

// loadConfig reads the optional configuration file and applies environment
// and flag overrides on top of it.
func loadConfig(v *viper.Viper) (*config.ExportConfig, error) {
	cfg := config.NewDefaultConfig()
	if path := v.GetString("config"); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyOverrides(v, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(v *viper.Viper, cfg *config.ExportConfig) error {
	strs := map[string]*string{
		"source.driver":              &cfg.Source.Driver,
		"source.dsn":                 &cfg.Source.DSN,
		"source.query":               &cfg.Source.Query,
		"source.input":               &cfg.Source.Input,
		"output.url":                 &cfg.Output.URL,
		"output.format":              &cfg.Output.Format,
		"output.ipc_compression":     &cfg.Output.IPCCompression,
		"output.compression":         &cfg.Output.Compression,
		"output.region":              &cfg.Output.Region,
		"output.endpoint":            &cfg.Output.Endpoint,
		"output.credentials_file":    &cfg.Output.CredentialsFile,
		"observability.log_level":    &cfg.Observability.LogLevel,
		"observability.log_encoding": &cfg.Observability.LogEncoding,
		"observability.metrics_addr": &cfg.Observability.MetricsAddr,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("export.batch_capacity") {
		cfg.Export.BatchCapacity = v.GetInt("export.batch_capacity")
	}
	if v.IsSet("output.compression_level") {
		cfg.Output.CompressionLevel = v.GetInt("output.compression_level")
	}
	if v.IsSet("observability.enable_tracing") {
		cfg.Observability.EnableTracing = v.GetBool("observability.enable_tracing")
	}

	if v.IsSet("source.columns") {
		columns, err := parseColumns(v.GetStringSlice("source.columns"))
		if err != nil {
			return err
		}
		cfg.Source.Columns = columns
	}
	return nil
}

// parseColumns parses name:TYPE pairs.
func parseColumns(specs []string) ([]config.ColumnConfig, error) {
	columns := make([]config.ColumnConfig, 0, len(specs))
	for _, spec := range specs {
		name, typ, ok := strings.Cut(spec, ":")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid column %q, expected name:TYPE", spec)
		}
		columns = append(columns, config.ColumnConfig{Name: name, Type: typ})
	}
	return columns, nil
}
