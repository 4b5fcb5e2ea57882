// Package config provides configuration for colexport export runs.
//
// # Key Features
//
// - ExportConfig: one structure covering source, batching, output and observability
// - Environment variable substitution with ${VAR_NAME} and ${VAR_NAME:-default}
// - Defaults via NewDefaultConfig and validation via Validate
//
// # Usage
//
//	cfg, err := config.LoadExportConfig("export.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A configuration file:
//
//	source:
//	  driver: pgx
//	  dsn: ${DATABASE_URL}
//	  query: SELECT id, name, created_at FROM people ORDER BY id
//	export:
//	  batch_capacity: 4096
//	output:
//	  url: s3://exports/people.arrows
//	  ipc_compression: zstd
//	  region: ${AWS_REGION:-us-east-1}
//
// Validation failures are *exporterrors.Error values of type
// ErrorTypeConfig, except a non-positive batch capacity which reports
// ErrorTypeInvalidCapacity.
package config
