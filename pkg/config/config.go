package config

import (
	"strings"

	"github.com/ajitpratap0/colexport/pkg/compression"
	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/formats/arrowipc"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// DefaultBatchCapacity is the batch row capacity used when none is configured.
const DefaultBatchCapacity = 2048

// ExportConfig is the complete configuration of one export run.
type ExportConfig struct {
	// Source selects where rows come from
	Source SourceConfig `yaml:"source" json:"source" mapstructure:"source"`

	// Export controls batch assembly
	Export BatchConfig `yaml:"export" json:"export" mapstructure:"export"`

	// Output selects serialization and destination
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Observability settings for logging, tracing and metrics
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// SourceConfig describes the row source. Either Driver, DSN and Query are
// set, or Input names a JSON lines file described by Columns.
type SourceConfig struct {
	// Driver is a database/sql driver name: pgx, mysql or snowflake
	Driver string `yaml:"driver" json:"driver" mapstructure:"driver"`
	// DSN is the driver-specific connection string
	DSN string `yaml:"dsn" json:"dsn" mapstructure:"dsn"`
	// Query is the statement whose result is exported
	Query string `yaml:"query" json:"query" mapstructure:"query"`
	// Input is a JSON lines file path, "-" for stdin
	Input string `yaml:"input" json:"input" mapstructure:"input"`
	// Columns names and types the fields of JSON lines input
	Columns []ColumnConfig `yaml:"columns" json:"columns" mapstructure:"columns"`
}

// ColumnConfig is one declared input column. Type accepts the names
// understood by types.ParseTypeName, e.g. "INT64", "DATE" or "varchar".
type ColumnConfig struct {
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	Type string `yaml:"type" json:"type" mapstructure:"type"`
}

// BatchConfig controls batch assembly.
type BatchConfig struct {
	// BatchCapacity is the maximum number of rows per batch
	BatchCapacity int `yaml:"batch_capacity" json:"batch_capacity" mapstructure:"batch_capacity"`
}

// OutputConfig selects the IPC encoding and the destination.
type OutputConfig struct {
	// URL is a local path, file://, s3:// or gs:// location
	URL string `yaml:"url" json:"url" mapstructure:"url"`
	// Format is the IPC framing: stream or file
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// IPCCompression compresses record bodies: none, lz4 or zstd
	IPCCompression string `yaml:"ipc_compression" json:"ipc_compression" mapstructure:"ipc_compression"`
	// Compression wraps the whole output stream
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// CompressionLevel is 1 (fastest) through 9 (best)
	CompressionLevel int `yaml:"compression_level" json:"compression_level" mapstructure:"compression_level"`
	// Region is the AWS region for s3:// outputs
	Region string `yaml:"region" json:"region" mapstructure:"region"`
	// Endpoint overrides the object store endpoint (S3-compatible stores, GCS emulators)
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	// CredentialsFile is a GCP service account file for gs:// outputs
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
	// PartSizeMB is the S3 multipart part size
	PartSizeMB int64 `yaml:"part_size_mb" json:"part_size_mb" mapstructure:"part_size_mb"`
	// Concurrency is the number of parallel S3 part uploads
	Concurrency int `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
}

// ObservabilityConfig contains logging, tracing and metrics settings.
type ObservabilityConfig struct {
	LogLevel      string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogEncoding   string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	EnableTracing bool   `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// MetricsAddr serves /metrics when set, e.g. ":9090"
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" mapstructure:"metrics_addr"`
}

// NewDefaultConfig returns a configuration with default values. The source
// and output location still have to be set.
func NewDefaultConfig() *ExportConfig {
	return &ExportConfig{
		Export: BatchConfig{
			BatchCapacity: DefaultBatchCapacity,
		},
		Output: OutputConfig{
			Format:           string(arrowipc.Stream),
			IPCCompression:   string(arrowipc.CompressionNone),
			Compression:      string(compression.None),
			CompressionLevel: int(compression.Default),
			PartSizeMB:       5,
			Concurrency:      4,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogEncoding: "json",
		},
	}
}

var drivers = map[string]bool{
	"pgx":       true,
	"mysql":     true,
	"snowflake": true,
}

// Validate checks required fields and value ranges.
func (c *ExportConfig) Validate() error {
	if c.Export.BatchCapacity < 1 {
		return exporterrors.New(exporterrors.ErrorTypeInvalidCapacity, "batch_capacity must be positive").
			WithDetail("batch_capacity", c.Export.BatchCapacity)
	}

	if err := c.Source.validate(); err != nil {
		return err
	}

	if c.Output.URL == "" {
		return configError("output.url is required")
	}
	if _, err := arrowipc.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := arrowipc.ParseCompression(c.Output.IPCCompression); err != nil {
		return err
	}
	if _, err := compression.ParseAlgorithm(c.Output.Compression); err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeConfig, "invalid output.compression")
	}
	if c.Output.CompressionLevel < 0 || c.Output.CompressionLevel > 9 {
		return configError("output.compression_level must be between 0 and 9")
	}
	if c.Output.PartSizeMB < 0 || c.Output.Concurrency < 0 {
		return configError("output.part_size_mb and output.concurrency cannot be negative")
	}
	return nil
}

func (s *SourceConfig) validate() error {
	database := s.Driver != "" || s.DSN != "" || s.Query != ""
	switch {
	case database && s.Input != "":
		return configError("source.input cannot be combined with a database source")
	case database:
		if !drivers[strings.ToLower(s.Driver)] {
			return configError("source.driver must be one of pgx, mysql, snowflake").
				WithDetail("driver", s.Driver)
		}
		if s.DSN == "" {
			return configError("source.dsn is required")
		}
		if s.Query == "" {
			return configError("source.query is required")
		}
	case s.Input != "":
		if len(s.Columns) == 0 {
			return configError("source.columns is required for JSON lines input")
		}
		if _, err := s.ColumnSpecs(); err != nil {
			return err
		}
	default:
		return configError("either source.driver or source.input is required")
	}
	return nil
}

// ColumnSpecs resolves the declared input columns.
func (s *SourceConfig) ColumnSpecs() ([]cursor.ColumnSpec, error) {
	specs := make([]cursor.ColumnSpec, len(s.Columns))
	seen := make(map[string]bool, len(s.Columns))
	for i, col := range s.Columns {
		if col.Name == "" {
			return nil, configError("column name is required").WithDetail("index", i)
		}
		if seen[col.Name] {
			return nil, configError("duplicate column name").WithDetail("column", col.Name)
		}
		seen[col.Name] = true

		desc := types.ParseTypeName(col.Type)
		if _, err := types.MapType(desc); err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConfig, "column type cannot be exported").
				WithDetail("column", col.Name).
				WithDetail("type", col.Type)
		}
		specs[i] = cursor.ColumnSpec{Name: col.Name, Type: desc}
	}
	return specs, nil
}

// SourceName names the source in logs and metric labels.
func (s *SourceConfig) SourceName() string {
	if s.Driver != "" {
		return strings.ToLower(s.Driver)
	}
	return "jsonl"
}

func configError(msg string) *exporterrors.Error {
	return exporterrors.New(exporterrors.ErrorTypeConfig, msg)
}
