package transport

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFile(t *testing.T) {
	limits := DefaultLimits()

	testCases := []struct {
		name    string
		file    string
		mime    string
		size    int64
		wantErr error
	}{
		{name: "json file", file: "export.json", mime: "application/json", size: 100},
		{name: "uppercase extension", file: "EXPORT.JSON", mime: "", size: 100},
		{name: "text plain with charset", file: "a.json", mime: "text/plain; charset=utf-8", size: 1},
		{name: "text json", file: "a.json", mime: "text/json", size: 1},
		{name: "unknown size", file: "a.json", mime: "", size: -1},
		{name: "wrong extension", file: "export.txt", mime: "text/plain", size: 1, wantErr: ErrUnsupportedExtension},
		{name: "no extension", file: "export", mime: "", size: 1, wantErr: ErrUnsupportedExtension},
		{name: "wrong mime", file: "a.json", mime: "application/octet-stream", size: 1, wantErr: ErrUnsupportedMIMEType},
		{name: "empty", file: "a.json", mime: "", size: 0, wantErr: ErrEmptyFile},
		{name: "too large", file: "a.json", mime: "", size: DefaultMaxFileSize + 1, wantErr: ErrFileTooLarge},
		{name: "at limit", file: "a.json", mime: "", size: DefaultMaxFileSize},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckFile(tc.file, tc.mime, tc.size, limits)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
		})
	}
}

func TestFileBuffer(t *testing.T) {
	limits := Limits{MaxFileSize: 16}

	t.Run("detaches from the original reader", func(t *testing.T) {
		src := strings.NewReader(`{"a":1}`)
		f, err := File{Name: "a.json", Size: 7, Body: src}.Buffer(limits)
		require.NoError(t, err)

		src.Reset("garbage")
		text, err := ReadText(context.Background(), f.Body, limits)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, text)
		assert.Equal(t, int64(7), f.Size)
	})

	t.Run("keeps one byte past the limit", func(t *testing.T) {
		f, err := File{Name: "a.json", Size: -1, Body: strings.NewReader(strings.Repeat("x", 100))}.Buffer(limits)
		require.NoError(t, err)

		_, err = ReadText(context.Background(), f.Body, limits)
		assert.True(t, errors.Is(err, ErrFileTooLarge), "got %v", err)
	})

	t.Run("nil body", func(t *testing.T) {
		f, err := File{Name: "a.json"}.Buffer(limits)
		require.NoError(t, err)
		assert.Nil(t, f.Body)
	})

	t.Run("read failure", func(t *testing.T) {
		_, err := File{Name: "a.json", Body: iotest.ErrReader(errors.New("boom"))}.Buffer(limits)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestReadText(t *testing.T) {
	ctx := context.Background()
	limits := Limits{MaxFileSize: 16}

	t.Run("strips BOM", func(t *testing.T) {
		text, err := ReadText(ctx, strings.NewReader("\xEF\xBB\xBF{}"), limits)
		require.NoError(t, err)
		assert.Equal(t, "{}", text)
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		_, err := ReadText(ctx, strings.NewReader("{\"a\":\"\xff\"}"), limits)
		assert.True(t, errors.Is(err, ErrInvalidEncoding))
	})

	t.Run("rejects whitespace only", func(t *testing.T) {
		_, err := ReadText(ctx, strings.NewReader(" \n\t"), limits)
		assert.True(t, errors.Is(err, ErrEmptyFile))
	})

	t.Run("enforces limit while reading", func(t *testing.T) {
		_, err := ReadText(ctx, strings.NewReader(strings.Repeat("x", 17)), limits)
		assert.True(t, errors.Is(err, ErrFileTooLarge))

		_, err = ReadText(ctx, strings.NewReader(strings.Repeat("x", 16)), limits)
		assert.NoError(t, err)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := ReadText(canceled, strings.NewReader("{}"), limits)
		assert.True(t, errors.Is(err, ErrImportCanceled))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON(`{"schemaVersion":"1.0.0","n":5}`)
	require.NoError(t, err)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), obj["n"])

	v, err = ParseJSON("  [1, 2]\n")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, v)

	for _, bad := range []string{"", "{", "{} {}", "{'a':1}", "nul"} {
		_, err := ParseJSON(bad)
		assert.True(t, errors.Is(err, ErrInvalidJSON), "input %q", bad)
	}
}
