// Package convert reads and writes the plain subtitle formats (SubRip,
// WebVTT and plain text) to and from documents.
package convert

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subedit/internal/document"
	"github.com/mgpai22/subedit/internal/subtitle"
)

type Format string

const (
	FormatASS Format = "ass"
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatTXT Format = "txt"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ass", ".ssa":
		return FormatASS, nil
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".txt":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q: use .ass, .ssa, .srt, .vtt or .txt", ext)
	}
}

// Open reads a subtitle file of any supported format into a document.
func Open(path string, opts ...document.Option) (*document.Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatASS {
		return document.Open(path, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(string(format)), err)
	}
	defer func() {
		_ = f.Close()
	}()

	switch format {
	case FormatSRT:
		return ReadSRT(f, opts...)
	case FormatVTT:
		return ReadVTT(f, opts...)
	default:
		return ReadTXT(f, opts...)
	}
}

// Save writes d to path in the format given by its extension.
func Save(d *document.Document, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatASS {
		return d.Write(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	switch format {
	case FormatSRT:
		err = WriteSRT(w, d)
	case FormatVTT:
		err = WriteVTT(w, d)
	default:
		err = WriteTXT(w, d, TXTOptions{Comments: true, Actors: true})
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// build turns parsed events into a fresh document.
func build(batch []*subtitle.Event, opts []document.Option) (*document.Document, error) {
	d := document.New(opts...)
	if len(batch) == 0 {
		return d, nil
	}
	if err := d.Events().Reset(batch); err != nil {
		return nil, err
	}
	return d, nil
}

// lineReader wraps a scanner with line counting and BOM removal.
type lineReader struct {
	scanner *bufio.Scanner
	n       int
}

func newLineReader(r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &lineReader{scanner: scanner}
}

func (l *lineReader) next() (string, bool) {
	if !l.scanner.Scan() {
		return "", false
	}
	l.n++
	line := l.scanner.Text()
	if l.n == 1 {
		line = strings.TrimPrefix(line, "\ufeff")
	}
	return line, true
}

func (l *lineReader) err() error {
	return l.scanner.Err()
}

func malformed(line int, msg string) error {
	return fmt.Errorf("%w: %s at line %d", subtitle.ErrMalformed, msg, line)
}
