package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/bestseller/extractor"
	"github.com/use-agent/bestseller/models"
	"github.com/use-agent/bestseller/snapshot"
)

const (
	chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	maxBody  = 10 << 20
)

// HTTPEngine fetches the server-rendered HTML without running scripts and
// extracts from it as a static snapshot. It only finds the best-seller
// block when the server renders it inline.
type HTTPEngine struct {
	client  *http.Client
	timeout time.Duration
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewHTTPEngine creates an HTTPEngine with a Chrome-like TLS fingerprint.
// timeout bounds each fetch; zero means the request context alone applies.
func NewHTTPEngine(timeout time.Duration) *HTTPEngine {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		timeout: timeout,
	}
}

func (e *HTTPEngine) Name() string { return ModeHTTP }

func (e *HTTPEngine) Extract(ctx context.Context, req *models.ExtractRequest) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	log := slog.Default().With("url", req.URL, "engine", e.Name())
	log.Info("fetching", "timeout", e.timeout)

	body, finalURL, err := e.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	page, err := snapshot.New(body)
	if err != nil {
		return nil, err
	}

	res, err := extractor.Extract(ctx, page, extractor.OptionsFromRequest(req, log))
	if err != nil {
		return nil, err
	}

	return &Result{ExtractionResult: res, FinalURL: finalURL, EngineName: e.Name()}, nil
}

// fetch GETs req.URL and returns the HTML body and the post-redirect URL.
// Transport failures and non-HTML responses are navigation failures.
func (e *HTTPEngine) fetch(ctx context.Context, req *models.ExtractRequest) (string, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeInvalidInput, "invalid url", err)
	}

	httpReq.Header.Set("User-Agent", chromeUA)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "identity")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", models.NewScrapeError(models.ErrCodeTimeout, "http fetch timed out", err)
		}
		return "", "", models.NewScrapeError(models.ErrCodeNavigation, "http fetch failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeNavigation, "failed to read response body", err)
	}

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 || !isHTMLContentType(ct) {
		return "", "", models.NewScrapeError(
			models.ErrCodeNavigation,
			fmt.Sprintf("non-html or error status %d (content-type: %s)", resp.StatusCode, ct),
			nil,
		)
	}

	return string(body), resp.Request.URL.String(), nil
}

// isHTMLContentType returns true if the content-type header looks like HTML.
func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
