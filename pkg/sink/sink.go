// Package sink opens the destination an export is written to: a local file,
// an S3 object or a Google Cloud Storage object.
//
// Supported locations:
//
//	/tmp/out.arrow, file:///tmp/out.arrow   local file ("-" is stdout)
//	s3://bucket/key                          S3 multipart upload
//	gs://bucket/object                       GCS resumable upload
//
// Data written to a remote sink is streamed; the object becomes visible when
// Close returns without error.
package sink

import (
	"context"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

// Sink is a destination for export output.
type Sink interface {
	io.WriteCloser
	// Location returns the URL or path the sink writes to.
	Location() string
	// Abort discards the output. Close must not be called afterwards.
	Abort(err error)
}

// Options configures Open. Fields that do not apply to a sink are ignored.
type Options struct {
	ContentType string
	Metadata    map[string]string

	// S3
	Region      string
	Endpoint    string
	PartSizeMB  int64
	Concurrency int

	// GCS
	CredentialsFile string

	Logger *zap.Logger
}

// Scheme identifies the kind of sink.
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeS3   Scheme = "s3"
	SchemeGCS  Scheme = "gs"
)

// Location is a parsed sink address.
type Location struct {
	Scheme Scheme
	Bucket string
	Key    string // object key, or the local path for SchemeFile
}

// ParseLocation parses a sink address. Anything without a recognized scheme
// is a local path.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, exporterrors.New(exporterrors.ErrorTypeConfig, "output location is empty")
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}

	switch Scheme(strings.ToLower(scheme)) {
	case SchemeFile:
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, exporterrors.Wrap(err, exporterrors.ErrorTypeConfig, "invalid file URL")
		}
		return Location{Scheme: SchemeFile, Key: u.Path}, nil
	case SchemeS3, SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, exporterrors.New(exporterrors.ErrorTypeConfig, "object URL needs a bucket and a key").
				WithDetail("url", raw)
		}
		return Location{Scheme: Scheme(strings.ToLower(scheme)), Bucket: bucket, Key: key}, nil
	default:
		return Location{}, exporterrors.New(exporterrors.ErrorTypeConfig, "unsupported output scheme").
			WithDetail("scheme", scheme)
	}
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return string(l.Scheme) + "://" + l.Bucket + "/" + l.Key
}

// Open opens the sink at raw.
func Open(ctx context.Context, raw string, opts Options) (Sink, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	switch loc.Scheme {
	case SchemeS3:
		return openS3(ctx, loc, opts)
	case SchemeGCS:
		return openGCS(ctx, loc, opts)
	default:
		return openFile(loc, opts)
	}
}
