package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFileSize is the byte ceiling for import files.
const DefaultMaxFileSize int64 = 10 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Limits are the file-level constraints applied before parsing.
type Limits struct {
	MaxFileSize       int64
	AllowedExtensions []string
	// AllowedMIMETypes always admits an empty type.
	AllowedMIMETypes []string
}

func DefaultLimits() Limits {
	return Limits{
		MaxFileSize:       DefaultMaxFileSize,
		AllowedExtensions: []string{".json"},
		AllowedMIMETypes:  []string{"application/json", "text/json", "text/plain"},
	}
}

func (l Limits) maxSize() int64 {
	if l.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return l.MaxFileSize
}

// File is an uploaded import file. Size is -1 when unknown.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Body     io.Reader
}

// Buffer reads the body into memory, at most one byte past the size limit,
// so the file no longer depends on its original reader. The size checks
// still run when the buffered file is imported.
func (f File) Buffer(limits Limits) (File, error) {
	if f.Body == nil {
		return f, nil
	}
	b, err := io.ReadAll(io.LimitReader(f.Body, limits.maxSize()+1))
	if err != nil {
		return f, fmt.Errorf("reading import: %w", err)
	}
	f.Body = bytes.NewReader(b)
	return f, nil
}

// CheckFile applies the extension, MIME type and size limits to a file
// before any bytes are read.
func CheckFile(name, mimeType string, size int64, limits Limits) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !contains(limits.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	if err := CheckMIMEType(mimeType, limits); err != nil {
		return err
	}
	if size == 0 {
		return ErrEmptyFile
	}
	if size > limits.maxSize() {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, limits.maxSize())
	}
	return nil
}

// CheckMIMEType accepts an empty type or one of the allowed media types.
// Parameters such as charset are ignored.
func CheckMIMEType(mimeType string, limits Limits) error {
	if strings.TrimSpace(mimeType) == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || !contains(limits.AllowedMIMETypes, strings.ToLower(mediaType)) {
		return fmt.Errorf("%w: %q", ErrUnsupportedMIMEType, mimeType)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// ReadText reads at most the size limit from r, strips a UTF-8 byte order
// mark and rejects invalid UTF-8. Reading stops when ctx is done.
func ReadText(ctx context.Context, r io.Reader, limits Limits) (string, error) {
	max := limits.maxSize()
	b, err := io.ReadAll(io.LimitReader(&contextReader{ctx: ctx, r: r}, max+1))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrImportCanceled, err)
		}
		return "", fmt.Errorf("reading import: %w", err)
	}
	if int64(len(b)) > max {
		return "", fmt.Errorf("%w: limit %d bytes", ErrFileTooLarge, max)
	}

	b = bytes.TrimPrefix(b, utf8BOM)
	if len(bytes.TrimSpace(b)) == 0 {
		return "", ErrEmptyFile
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidEncoding
	}
	return string(b), nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ParseJSON decodes exactly one JSON value. Numbers decode as float64.
func ParseJSON(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the top-level value", ErrInvalidJSON)
	}
	return value, nil
}
