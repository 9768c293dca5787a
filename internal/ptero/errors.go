package ptero

import "fmt"

// UpstreamError is a non-2xx response from a panel API. Batch loops catch it
// per item and keep going; only a failure to list servers at all aborts a run.
type UpstreamError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s %s -> %d: %s", e.Method, e.URL, e.Status, body)
}

// ProtectionBlockedError means the panel's bot protection kept answering with
// challenge pages or 403/503 across every retry. Callers render this as a
// dedicated "upstream protection" message instead of a generic failure.
type ProtectionBlockedError struct {
	Host     string
	Attempts int
}

func (e *ProtectionBlockedError) Error() string {
	return fmt.Sprintf("protection block on %s after %d attempts", e.Host, e.Attempts)
}
