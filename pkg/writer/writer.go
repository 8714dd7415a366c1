package writer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/darkclainer/kabgo/pkg/parser"
)

const (
	FormatTSV  = "tsv"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Stdout is the output path that makes writer print to standard output
const Stdout = "-"

var ErrUnknownFormat = errors.New("unknown output format")

type Config struct {
	// Format is one of tsv, csv or json
	Format string
	// Append keeps existing content of output file
	Append bool
}

type Writer interface {
	// Write persists entries, they are flushed before Write returns
	Write(entries []*parser.LexicalEntry) error
	Close() error
}

// encoder writes entries of one format to underlying writer
type encoder interface {
	WriteHeader() error
	Encode(entry *parser.LexicalEntry) error
	Flush() error
}

func newEncoder(w io.Writer, format string) (encoder, error) {
	switch format {
	case FormatTSV, "":
		return newTSVEncoder(w), nil
	case FormatCSV:
		return newCSVEncoder(w), nil
	case FormatJSON:
		return newJSONEncoder(w), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Extension returns file extension for format
func Extension(format string) string {
	if format == "" {
		return FormatTSV
	}
	return format
}

type fileWriter struct {
	file   io.WriteCloser
	enc    encoder
	closed bool
}

// Open opens output file, path "-" means standard output
func Open(path string, config *Config) (Writer, error) {
	if path == Stdout {
		return New(nopCloser{os.Stdout}, config.Format, true)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if config.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644) // nolint:gosec // output is meant to be readable
	if err != nil {
		return nil, fmt.Errorf("can not open output file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("can not stat output file: %w", err)
	}
	w, err := New(file, config.Format, info.Size() == 0)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

// New returns writer that encodes entries to w. Header is written only if withHeader is set
// and format has one.
func New(w io.WriteCloser, format string, withHeader bool) (Writer, error) {
	enc, err := newEncoder(w, format)
	if err != nil {
		return nil, err
	}
	if withHeader {
		if err := enc.WriteHeader(); err != nil {
			return nil, fmt.Errorf("can not write header: %w", err)
		}
		if err := enc.Flush(); err != nil {
			return nil, fmt.Errorf("can not write header: %w", err)
		}
	}
	return &fileWriter{
		file: w,
		enc:  enc,
	}, nil
}

func (w *fileWriter) Write(entries []*parser.LexicalEntry) error {
	if w.closed {
		return os.ErrClosed
	}
	for _, entry := range entries {
		if err := w.enc.Encode(entry); err != nil {
			return fmt.Errorf("can not write entry %q: %w", entry.Headword, err)
		}
	}
	return w.enc.Flush()
}

func (w *fileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.enc.Flush()
	if err := w.file.Close(); err != nil {
		return err
	}
	return flushErr
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// ReadFile reads entries previously written to path in given format
func ReadFile(path, format string) ([]*parser.LexicalEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can not open file: %w", err)
	}
	defer file.Close()
	return Read(file, format)
}

func Read(r io.Reader, format string) ([]*parser.LexicalEntry, error) {
	switch format {
	case FormatTSV, "":
		return readTSV(r)
	case FormatCSV:
		return readCSV(r)
	case FormatJSON:
		return readJSON(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
