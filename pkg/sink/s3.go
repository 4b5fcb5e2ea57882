package sink

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

// s3Sink streams writes through a pipe into a multipart upload running in
// its own goroutine.
type s3Sink struct {
	loc    Location
	pw     *io.PipeWriter
	done   chan error
	logger *zap.Logger
}

func openS3(ctx context.Context, loc Location, opts Options) (*s3Sink, error) {
	var cfgOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConfig, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Sink(ctx, client, loc, opts), nil
}

func newS3Sink(ctx context.Context, client manager.UploadAPIClient, loc Location, opts Options) *s3Sink {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if opts.PartSizeMB > 0 {
			u.PartSize = opts.PartSizeMB * 1024 * 1024
		}
		if opts.Concurrency > 0 {
			u.Concurrency = opts.Concurrency
		}
	})

	pr, pw := io.Pipe()
	s := &s3Sink{loc: loc, pw: pw, done: make(chan error, 1), logger: opts.Logger}

	metadata := map[string]string{"created": time.Now().UTC().Format(time.RFC3339)}
	for k, v := range opts.Metadata {
		metadata[k] = v
	}
	input := &s3.PutObjectInput{
		Bucket:   aws.String(loc.Bucket),
		Key:      aws.String(loc.Key),
		Body:     pr,
		Metadata: metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	go func() {
		result, err := uploader.Upload(ctx, input)
		if err != nil {
			_ = pr.CloseWithError(err)
			s.done <- exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to upload to S3").
				WithDetail("url", loc.String())
			return
		}
		s.logger.Debug("S3 upload complete",
			zap.String("url", loc.String()),
			zap.String("location", result.Location))
		s.done <- nil
	}()
	return s
}

func (s *s3Sink) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

func (s *s3Sink) Location() string { return s.loc.String() }

// Close completes the upload and waits for it.
func (s *s3Sink) Close() error {
	_ = s.pw.Close()
	return <-s.done
}

// Abort fails the upload; the uploader aborts any multipart upload it began.
func (s *s3Sink) Abort(err error) {
	if err == nil {
		err = io.ErrClosedPipe
	}
	_ = s.pw.CloseWithError(err)
	<-s.done
}
