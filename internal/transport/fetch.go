package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
)

// FetchURL downloads an export over http or https, applying the MIME type
// and size limits to the response.
func FetchURL(ctx context.Context, client *http.Client, rawURL string, limits Limits) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURLScheme, u.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logging.FromContext(ctx), "fetch_export")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	if err := CheckMIMEType(resp.Header.Get("Content-Type"), limits); err != nil {
		return "", err
	}
	if resp.ContentLength > limits.maxSize() {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, resp.ContentLength, limits.maxSize())
	}

	text, err := ReadText(ctx, resp.Body, limits)
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).Debug("export fetched",
		slog.String("host", u.Host),
		slog.Int("bytes", len(text)))
	return text, nil
}
