package ptero

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// Client fingerprints rotated between retry attempts when the upstream looks
// like it is serving a bot challenge instead of the API.
var fingerprints = []struct {
	userAgent string
	accept    string
}{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", "application/json"},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15", "application/json, text/plain, */*"},
	{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "application/json;q=0.9,*/*;q=0.8"},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 Edg/119.0.0.0", "application/json"},
}

var challengeMarkers = []string{
	"Just a moment",
	"cf-browser-verification",
	"challenge-platform",
	"Attention Required!",
	"Checking your browser",
}

// Response is a fully drained HTTP response. The body is read eagerly because
// challenge detection needs it before the caller does.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Invoker wraps outbound panel calls with fixed pacing and bounded retry on
// the failure modes seen against externally hosted panels: challenge pages
// masquerading as responses, and transient 403/503.
type Invoker struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	stepDelay  time.Duration
	sleep      func(time.Duration)
}

func NewInvoker(timeout time.Duration) *Invoker {
	return &Invoker{
		client:     &http.Client{Timeout: timeout},
		maxRetries: 3,
		baseDelay:  2 * time.Second,
		stepDelay:  3 * time.Second,
		sleep:      time.Sleep,
	}
}

// Do executes the request produced by build, retrying up to maxRetries times
// when the response is a soft block. build is called once per attempt so the
// request body can be recreated; attempt selects the header fingerprint.
func (inv *Invoker) Do(build func(attempt int) (*http.Request, error)) (*Response, error) {
	var host string
	attempts := 0

	for attempt := 0; attempt <= inv.maxRetries; attempt++ {
		req, err := build(attempt)
		if err != nil {
			return nil, err
		}
		host = req.URL.Host

		fp := fingerprints[attempt%len(fingerprints)]
		req.Header.Set("User-Agent", fp.userAgent)
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", fp.accept)
		} else if attempt > 0 {
			req.Header.Set("Accept", fp.accept)
		}

		res, err := inv.client.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			return nil, err
		}
		attempts++

		if !isSoftBlock(res.StatusCode, res.Header.Get("Content-Type"), body) {
			return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: body}, nil
		}

		if attempt < inv.maxRetries {
			inv.sleep(inv.baseDelay + time.Duration(attempt)*inv.stepDelay)
		}
	}

	return nil, &ProtectionBlockedError{Host: host, Attempts: attempts}
}

func isSoftBlock(status int, contentType string, body []byte) bool {
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		return true
	}
	if strings.Contains(contentType, "text/html") {
		return true
	}
	text := string(body)
	for _, marker := range challengeMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
