package sink

import (
	"context"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

type gcsSink struct {
	loc    Location
	client *storage.Client
	w      *storage.Writer
	cancel context.CancelFunc
	logger *zap.Logger
}

func openGCS(ctx context.Context, loc Location, opts Options) (*gcsSink, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to create GCS client")
	}

	// Cancelling the writer's context is the only way to abandon an upload.
	wctx, cancel := context.WithCancel(ctx)
	w := client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(wctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata

	return &gcsSink{loc: loc, client: client, w: w, cancel: cancel, logger: opts.Logger}, nil
}

func (s *gcsSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *gcsSink) Location() string { return s.loc.String() }

func (s *gcsSink) Close() error {
	defer s.cancel()
	defer s.client.Close()

	if err := s.w.Close(); err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to upload to GCS").
			WithDetail("url", s.loc.String())
	}
	s.logger.Debug("GCS upload complete",
		zap.String("url", s.loc.String()),
		zap.Int64("size", s.w.Attrs().Size))
	return nil
}

func (s *gcsSink) Abort(err error) {
	s.cancel()
	_ = s.w.Close()
	_ = s.client.Close()
	s.logger.Debug("GCS upload abandoned", zap.String("url", s.loc.String()), zap.Error(err))
}
