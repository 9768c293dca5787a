package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
)

// FileAPI is the slice of the panel Client API the discovery engine needs.
type FileAPI interface {
	ListFiles(ctx context.Context, serverID, directory string) ([]ptero.FileEntry, error)
	ReadFile(ctx context.Context, serverID, filePath string) (string, error)
}

// Candidate directories, probed in order. Panels on the newer layout keep the
// session directory under /files; older ones keep it at the volume root.
var candidateDirs = []string{"/session", "/files/session", "/files", "/"}

// Discovery is a successfully located credential payload.
type Discovery struct {
	Payload   string
	FoundPath string
}

// Engine locates a credential JSON file for one server without knowing which
// layout convention the panel uses. Not finding one is the expected outcome
// for most servers and is reported as a nil Discovery with a nil error.
type Engine struct {
	files FileAPI
}

func NewEngine(files FileAPI) *Engine {
	return &Engine{files: files}
}

// Find probes the candidate directories and returns the first valid credential
// payload. A 409 from the panel (server offline or suspended) aborts the
// remaining candidates for this server and counts as not found.
func (e *Engine) Find(ctx context.Context, serverID string) (*Discovery, error) {
	for _, dir := range candidateDirs {
		entries, err := e.files.ListFiles(ctx, serverID, dir)
		if err != nil {
			if isServerUnreachable(err) {
				return nil, nil
			}
			if isFatal(err) {
				return nil, err
			}
			continue
		}

		name := pickCredentialFile(entries)
		if name == "" {
			continue
		}

		filePath := joinRemote(dir, name)
		raw, err := e.files.ReadFile(ctx, serverID, filePath)
		if err != nil {
			if isServerUnreachable(err) {
				return nil, nil
			}
			if isFatal(err) {
				return nil, err
			}
			continue
		}

		normalized, ok := NormalizeContent(raw)
		if !ok {
			continue
		}
		cleaned, valid := CleanJSON(normalized)
		if !valid {
			continue
		}
		return &Discovery{Payload: canonicalJSON(cleaned), FoundPath: filePath}, nil
	}
	return nil, nil
}

// pickCredentialFile prefers an entry literally named creds.json, falling
// back to the first .json file in the listing.
func pickCredentialFile(entries []ptero.FileEntry) string {
	for _, entry := range entries {
		if entry.IsFile && entry.Name == "creds.json" {
			return entry.Name
		}
	}
	for _, entry := range entries {
		if entry.IsFile && strings.HasSuffix(entry.Name, ".json") {
			return entry.Name
		}
	}
	return ""
}

func joinRemote(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

func isServerUnreachable(err error) bool {
	var upstream *ptero.UpstreamError
	return errors.As(err, &upstream) && upstream.Status == http.StatusConflict
}

// isFatal marks errors that should stop probing and be counted against the
// server instead of treated as "directory missing": a persistent protection
// block, or a cancelled context.
func isFatal(err error) bool {
	var blocked *ptero.ProtectionBlockedError
	return errors.As(err, &blocked) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// canonicalJSON re-serializes a known-valid JSON document so payloads compare
// equal regardless of the formatting the panel returned them in.
func canonicalJSON(s string) string {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return s
	}
	return string(encoded)
}
