// Package arrowipc serializes exported batches in the Arrow IPC stream and
// file formats.
package arrowipc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colexport/pkg/export"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

// Format selects the IPC framing.
type Format string

const (
	// Stream is the IPC streaming format, readable without seeking.
	Stream Format = "stream"
	// File is the random-access IPC file format ("ARROW1" magic).
	File Format = "file"
)

// Compression selects IPC body compression.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
)

var fileMagic = []byte("ARROW1")

// ParseFormat resolves a format name. The empty string means Stream.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", Stream:
		return Stream, nil
	case File:
		return File, nil
	}
	return "", exporterrors.New(exporterrors.ErrorTypeConfig, "unsupported IPC format").
		WithDetail("format", name)
}

// ParseCompression resolves a body compression name. The empty string means
// no compression.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionLZ4, CompressionZstd:
		return Compression(name), nil
	}
	return "", exporterrors.New(exporterrors.ErrorTypeConfig, "unsupported IPC compression").
		WithDetail("compression", name)
}

// Options configures a Writer.
type Options struct {
	Format      Format
	Compression Compression
	Allocator   memory.Allocator
}

type recordWriter interface {
	Write(rec arrow.Record) error
	Close() error
}

// Writer writes batches of one schema to an IPC stream or file.
type Writer struct {
	w       recordWriter
	format  Format
	batches int
	rows    int64
}

// NewWriter starts an IPC output on w. Close finishes the output but does
// not close w.
func NewWriter(w io.Writer, schema *arrow.Schema, opts Options) (*Writer, error) {
	mem := opts.Allocator
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	ipcOpts := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(mem)}
	switch opts.Compression {
	case "", CompressionNone:
	case CompressionLZ4:
		ipcOpts = append(ipcOpts, ipc.WithLZ4())
	case CompressionZstd:
		ipcOpts = append(ipcOpts, ipc.WithZstd())
	default:
		return nil, exporterrors.New(exporterrors.ErrorTypeConfig, "unsupported IPC compression").
			WithDetail("compression", string(opts.Compression))
	}

	switch opts.Format {
	case "", Stream:
		return &Writer{w: ipc.NewWriter(w, ipcOpts...), format: Stream}, nil
	case File:
		fw, err := ipc.NewFileWriter(w, ipcOpts...)
		if err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to create IPC file writer")
		}
		return &Writer{w: fw, format: File}, nil
	default:
		return nil, exporterrors.New(exporterrors.ErrorTypeConfig, "unsupported IPC format").
			WithDetail("format", string(opts.Format))
	}
}

// WriteRecord writes one record.
func (w *Writer) WriteRecord(rec arrow.Record) error {
	if err := w.w.Write(rec); err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to write IPC record").
			WithDetail("batch", w.batches)
	}
	w.batches++
	w.rows += rec.NumRows()
	return nil
}

// WriteBatch writes one exported batch. The batch stays owned by the caller.
func (w *Writer) WriteBatch(b *export.Batch) error {
	return w.WriteRecord(b.Record())
}

// WriteTable writes every batch of t in order, keeping batch boundaries.
func (w *Writer) WriteTable(t *export.Table) error {
	for i := 0; i < t.NumBatches(); i++ {
		if err := w.WriteBatch(t.Batch(i)); err != nil {
			return err
		}
	}
	return nil
}

// Batches returns the number of records written.
func (w *Writer) Batches() int { return w.batches }

// Rows returns the number of rows written.
func (w *Writer) Rows() int64 { return w.rows }

// Close writes the stream end marker or file footer.
func (w *Writer) Close() error {
	if err := w.w.Close(); err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to finish IPC output").
			WithDetail("format", string(w.format))
	}
	return nil
}

// Contents is everything read back from an IPC input.
type Contents struct {
	Format  Format
	Schema  *arrow.Schema
	Records []arrow.Record
}

// NumRows returns the total row count of all records.
func (c *Contents) NumRows() int64 {
	var n int64
	for _, rec := range c.Records {
		n += rec.NumRows()
	}
	return n
}

// Release frees every record.
func (c *Contents) Release() {
	for _, rec := range c.Records {
		rec.Release()
	}
	c.Records = nil
}

// ReadAll reads an IPC stream or file from r, telling the two apart by the
// file magic. Compressed record bodies are decompressed transparently.
func ReadAll(r io.Reader, mem memory.Allocator) (*Contents, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(len(fileMagic))
	if err == nil && bytes.Equal(head, fileMagic) {
		return readFile(br, mem)
	}
	return readStream(br, mem)
}

func readStream(r io.Reader, mem memory.Allocator) (*Contents, error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to open IPC stream")
	}
	defer rdr.Release()

	c := &Contents{Format: Stream, Schema: rdr.Schema()}
	for rdr.Next() {
		rec := rdr.Record()
		rec.Retain()
		c.Records = append(c.Records, rec)
	}
	if err := rdr.Err(); err != nil {
		c.Release()
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to read IPC stream").
			WithDetail("batch", len(c.Records))
	}
	return c, nil
}

func readFile(r io.Reader, mem memory.Allocator) (*Contents, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to read IPC file")
	}

	rdr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to open IPC file")
	}
	defer rdr.Close()

	c := &Contents{Format: File, Schema: rdr.Schema()}
	for i := 0; i < rdr.NumRecords(); i++ {
		rec, err := rdr.RecordAt(i)
		if err != nil {
			c.Release()
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to read IPC record").
				WithDetail("batch", i)
		}
		c.Records = append(c.Records, rec)
	}
	return c, nil
}

// Describe renders a one-line summary of c.
func (c *Contents) Describe() string {
	return fmt.Sprintf("format=%s columns=%d batches=%d rows=%d",
		c.Format, c.Schema.NumFields(), len(c.Records), c.NumRows())
}
