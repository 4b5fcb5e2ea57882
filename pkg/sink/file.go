package sink

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

type fileSink struct {
	f      *os.File
	path   string
	stdout bool
	logger *zap.Logger
}

func openFile(loc Location, opts Options) (*fileSink, error) {
	if loc.Key == "-" {
		return &fileSink{f: os.Stdout, path: "-", stdout: true, logger: opts.Logger}, nil
	}

	if dir := filepath.Dir(loc.Key); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to create output directory").
				WithDetail("dir", dir)
		}
	}

	f, err := os.Create(loc.Key) //nolint:gosec // G304: output path comes from the operator
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", loc.Key)
	}
	return &fileSink{f: f, path: loc.Key, logger: opts.Logger}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	if err != nil {
		return n, exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to write output file").
			WithDetail("path", s.path)
	}
	return n, nil
}

func (s *fileSink) Location() string { return s.path }

func (s *fileSink) Close() error {
	if s.stdout {
		return nil
	}
	if err := s.f.Close(); err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to close output file").
			WithDetail("path", s.path)
	}
	s.logger.Debug("output file written", zap.String("path", s.path))
	return nil
}

func (s *fileSink) Abort(err error) {
	if s.stdout {
		return
	}
	_ = s.f.Close()
	if rmErr := os.Remove(s.path); rmErr != nil {
		s.logger.Warn("failed to remove partial output", zap.String("path", s.path), zap.Error(rmErr))
		return
	}
	s.logger.Debug("partial output removed", zap.String("path", s.path), zap.Error(err))
}
