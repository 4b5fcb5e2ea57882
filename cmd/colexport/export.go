package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/compression"
	"github.com/ajitpratap0/colexport/pkg/config"
	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/export"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/formats/arrowipc"
	"github.com/ajitpratap0/colexport/pkg/logger"
	"github.com/ajitpratap0/colexport/pkg/metrics"
	"github.com/ajitpratap0/colexport/pkg/observability"
	"github.com/ajitpratap0/colexport/pkg/sink"
)

// exportResult summarizes a finished export.
type exportResult struct {
	Location string
	Batches  int
	Rows     int64
	Duration time.Duration
}

// runExportCommand sets up logging, tracing and the metrics endpoint around
// runExport.
func runExportCommand(ctx context.Context, stderr io.Writer, cfg *config.ExportConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Observability.EnableTracing {
		if err := observability.InitTracing(observability.DefaultTracingConfig(version), stderr); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := observability.Shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shutdown tracing", zap.Error(err))
			}
		}()
	}

	collector := metrics.Default()
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		srv := serveMetrics(addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log := logger.Get().With(zap.String("component", "colexport-cli"))
	res, err := runExport(ctx, cfg, collector, log)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	log.Info("export completed successfully",
		zap.String("location", res.Location),
		zap.Int("batches", res.Batches),
		zap.Int64("rows", res.Rows),
		zap.Duration("duration", res.Duration),
		zap.Float64("rows_per_second", float64(res.Rows)/res.Duration.Seconds()))
	return nil
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}

// runExport streams the configured source through the batch assembler into
// the configured sink. The sink is aborted if any step fails, so a failed
// export leaves no partial output behind.
func runExport(ctx context.Context, cfg *config.ExportConfig, collector *metrics.Collector, log *zap.Logger) (res exportResult, err error) {
	timer := metrics.NewTimer()
	source := cfg.Source.SourceName()

	ctx = logger.ContextWithExport(ctx, newExportID(), source)
	ctx, span := observability.StartSpan(ctx, "export.run")
	defer func() {
		res.Duration = timer.Stop()
		collector.ObserveExport(source, res.Duration, err)
		span.SetAttribute("rows", res.Rows)
		span.SetAttribute("batches", res.Batches)
		span.Finish(err)
	}()
	log = logger.FromContext(ctx, log)

	cur, closeSource, err := openSource(ctx, &cfg.Source, log)
	if err != nil {
		return res, err
	}
	defer closeSource()

	asm, err := export.NewAssembler(cur, cfg.Export.BatchCapacity,
		export.WithLogger(log),
		export.WithMetrics(collector),
		export.WithSource(source),
	)
	if err != nil {
		return res, err
	}

	out, err := sink.Open(ctx, cfg.Output.URL, sink.Options{
		ContentType:     contentType(cfg.Output),
		Metadata:        map[string]string{"exporter": "colexport/" + version, "source": source},
		Region:          cfg.Output.Region,
		Endpoint:        cfg.Output.Endpoint,
		PartSizeMB:      cfg.Output.PartSizeMB,
		Concurrency:     cfg.Output.Concurrency,
		CredentialsFile: cfg.Output.CredentialsFile,
		Logger:          log,
	})
	if err != nil {
		return res, err
	}
	res.Location = out.Location()

	if err = writeBatches(ctx, asm, out, cfg.Output, &res); err != nil {
		out.Abort(err)
		return res, err
	}
	if err = out.Close(); err != nil {
		return res, err
	}

	log.Info("export written",
		zap.String("location", res.Location),
		zap.Int("columns", asm.NumColumns()),
		zap.Int("batches", res.Batches),
		zap.Int64("rows", res.Rows))
	return res, nil
}

// writeBatches encodes every batch of asm into out. It closes the IPC and
// compression layers but not out.
func writeBatches(ctx context.Context, asm *export.Assembler, out io.Writer, cfg config.OutputConfig, res *exportResult) error {
	alg, err := compression.ParseAlgorithm(cfg.Compression)
	if err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeConfig, "invalid output compression")
	}
	format, err := arrowipc.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	ipcCompression, err := arrowipc.ParseCompression(cfg.IPCCompression)
	if err != nil {
		return err
	}

	cw, err := compression.NewWriter(out, alg, compression.Level(cfg.CompressionLevel))
	if err != nil {
		return err
	}
	w, err := arrowipc.NewWriter(cw, asm.Schema(), arrowipc.Options{Format: format, Compression: ipcCompression})
	if err != nil {
		_ = cw.Close()
		return err
	}

	for batch, err := range asm.Batches(ctx) {
		if err != nil {
			_ = w.Close()
			_ = cw.Close()
			return err
		}
		werr := w.WriteBatch(batch)
		batch.Release()
		if werr != nil {
			_ = w.Close()
			_ = cw.Close()
			return werr
		}
	}

	res.Batches = w.Batches()
	res.Rows = w.Rows()
	if err := w.Close(); err != nil {
		_ = cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to finish output compression")
	}
	return nil
}

// openSource opens the configured cursor. The returned function releases
// everything the cursor holds.
func openSource(ctx context.Context, cfg *config.SourceConfig, log *zap.Logger) (cursor.ResultCursor, func(), error) {
	if cfg.Input != "" {
		return openJSONLines(cfg, log)
	}

	driver := strings.ToLower(cfg.Driver)
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to open database").
			WithDetail("driver", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to connect to database").
			WithDetail("driver", driver)
	}

	rows, err := db.QueryContext(ctx, cfg.Query)
	if err != nil {
		_ = db.Close()
		return nil, nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "query failed").
			WithDetail("driver", driver)
	}
	cur, err := cursor.NewSQLCursor(rows)
	if err != nil {
		_ = rows.Close()
		_ = db.Close()
		return nil, nil, err
	}

	return cur, func() {
		_ = cur.Close()
		_ = db.Close()
	}, nil
}

func openJSONLines(cfg *config.SourceConfig, log *zap.Logger) (cursor.ResultCursor, func(), error) {
	specs, err := cfg.ColumnSpecs()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Input == "-" {
		return cursor.NewJSONLinesCursor(os.Stdin, specs).WithLogger(log), func() {}, nil
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, nil, exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to open input").
			WithDetail("path", cfg.Input)
	}
	return cursor.NewJSONLinesCursor(f, specs).WithLogger(log), func() { _ = f.Close() }, nil
}

func contentType(cfg config.OutputConfig) string {
	if alg, err := compression.ParseAlgorithm(cfg.Compression); err == nil && alg != compression.None {
		return "application/octet-stream"
	}
	if cfg.Format == string(arrowipc.File) {
		return "application/vnd.apache.arrow.file"
	}
	return "application/vnd.apache.arrow.stream"
}

func newExportID() string {
	return fmt.Sprintf("%x", time.Now().UnixNano())
}
