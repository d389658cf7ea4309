package icons

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxIconSize caps how much of an icon response is read (1 MB).
const MaxIconSize int64 = 1 << 20

// HTTPSource fetches icons over HTTP. Relative locators are resolved against
// BaseURL.
type HTTPSource struct {
	BaseURL string
	client  *http.Client
	tracer  trace.Tracer
}

// NewHTTPSource creates an HTTPSource with the given per-request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("docskin/icons"),
	}
}

// FetchIcon GETs the icon at locator and returns its body as text.
func (s *HTTPSource) FetchIcon(ctx context.Context, locator string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "icons.fetch",
		trace.WithAttributes(attribute.String("docskin.icon.locator", locator)))
	defer span.End()

	markup, status, err := s.fetch(ctx, locator)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return markup, nil
}

func (s *HTTPSource) fetch(ctx context.Context, locator string) (string, int, error) {
	target, err := s.resolve(locator)
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, fmt.Errorf("creating icon request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("requesting icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp.StatusCode, fmt.Errorf("icon request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxIconSize))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("reading icon body: %w", err)
	}
	return string(body), resp.StatusCode, nil
}

func (s *HTTPSource) resolve(locator string) (string, error) {
	ref, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parsing icon locator %q: %w", locator, err)
	}
	if ref.IsAbs() || s.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(strings.TrimSuffix(s.BaseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parsing icon base URL %q: %w", s.BaseURL, err)
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/")}).String(), nil
}

// FSSource reads icons from a filesystem, typically the built site directory.
type FSSource struct {
	FS fs.FS
}

// FetchIcon reads the file at locator. A leading slash is ignored.
func (s FSSource) FetchIcon(ctx context.Context, locator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := strings.TrimPrefix(locator, "/")
	data, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return "", fmt.Errorf("reading icon %s: %w", name, err)
	}
	return string(data), nil
}

// IconSource matches colormode.IconSource.
type IconSource interface {
	FetchIcon(ctx context.Context, locator string) (string, error)
}

// SVGOnly wraps src and rejects content that does not contain an <svg>
// element, so an HTML error page is never rendered as an icon.
func SVGOnly(src IconSource) IconSource {
	return svgOnly{src}
}

type svgOnly struct {
	src IconSource
}

func (s svgOnly) FetchIcon(ctx context.Context, locator string) (string, error) {
	markup, err := s.src.FetchIcon(ctx, locator)
	if err != nil {
		return "", err
	}
	if !strings.Contains(strings.ToLower(markup), "<svg") {
		return "", fmt.Errorf("icon %s is not SVG markup", locator)
	}
	return strings.TrimSpace(markup), nil
}
