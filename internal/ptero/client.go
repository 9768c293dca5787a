package ptero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ServerRecord is a read-only snapshot of one server from the Application API
// listing. It is re-fetched per operation; staleness is accepted.
type ServerRecord struct {
	ID         int64
	UUID       string
	Identifier string
	Name       string
	OwnerID    int64
}

// UserRecord is one panel account from the Application API.
type UserRecord struct {
	ID       int64
	Username string
	Email    string
	Admin    bool
}

// FileEntry is one entry of a remote directory listing.
type FileEntry struct {
	Name   string
	IsFile bool
}

// Resources is the live usage snapshot of one server.
type Resources struct {
	State       string
	Suspended   bool
	CPUPercent  float64
	MemoryBytes int64
	DiskBytes   int64
}

// Client issues authenticated REST calls against one panel's Application API
// (admin scoped) and Client API (per-server scoped). The two key classes are
// never mixed; two Client instances exist for the main and external panels.
type Client struct {
	baseURL   string
	appKey    string
	clientKey string
	inv       *Invoker
}

func NewClient(baseURL, appKey, clientKey string, inv *Invoker) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		appKey:    appKey,
		clientKey: clientKey,
		inv:       inv,
	}
}

// Host returns the panel host, used for blacklist checks and error reporting.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Host == "" {
		return c.baseURL
	}
	return u.Host
}

// ApplicationRequest calls {base}/api/application/{path} with the admin key.
func (c *Client) ApplicationRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.request(ctx, method, "/api/application/"+strings.TrimLeft(path, "/"), c.appKey, body, "")
}

// ClientRequest calls {base}/api/client/{path} with the client key. The
// response body may be raw file contents rather than JSON; callers normalize.
func (c *Client) ClientRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.request(ctx, method, "/api/client/"+strings.TrimLeft(path, "/"), c.clientKey, body, "")
}

func (c *Client) request(ctx context.Context, method, path, key string, body any, rawBody string) ([]byte, error) {
	var payload []byte
	contentType := ""
	if rawBody != "" {
		payload = []byte(rawBody)
		contentType = "text/plain"
	} else if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		contentType = "application/json"
	}

	fullURL := c.baseURL + path

	res, err := c.inv.Do(func(attempt int) (*http.Request, error) {
		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+key)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &UpstreamError{Method: method, URL: fullURL, Status: res.StatusCode, Body: string(res.Body)}
	}
	return res.Body, nil
}

// ListServers drains the paginated Application API server listing.
func (c *Client) ListServers(ctx context.Context) ([]ServerRecord, error) {
	var out []ServerRecord
	page := 1
	for {
		body, err := c.ApplicationRequest(ctx, http.MethodGet, fmt.Sprintf("servers?page=%d&per_page=100", page), nil)
		if err != nil {
			return nil, err
		}
		var parsed struct {
			Data []struct {
				Attributes struct {
					ID         int64  `json:"id"`
					UUID       string `json:"uuid"`
					Identifier string `json:"identifier"`
					Name       string `json:"name"`
					User       int64  `json:"user"`
				} `json:"attributes"`
			} `json:"data"`
			Meta struct {
				Pagination struct {
					CurrentPage int `json:"current_page"`
					TotalPages  int `json:"total_pages"`
				} `json:"pagination"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode server listing: %w", err)
		}
		for _, d := range parsed.Data {
			out = append(out, ServerRecord{
				ID:         d.Attributes.ID,
				UUID:       d.Attributes.UUID,
				Identifier: d.Attributes.Identifier,
				Name:       d.Attributes.Name,
				OwnerID:    d.Attributes.User,
			})
		}
		if parsed.Meta.Pagination.CurrentPage >= parsed.Meta.Pagination.TotalPages {
			break
		}
		page++
	}
	return out, nil
}

// ListUsers drains the paginated Application API user listing.
func (c *Client) ListUsers(ctx context.Context) ([]UserRecord, error) {
	var out []UserRecord
	page := 1
	for {
		body, err := c.ApplicationRequest(ctx, http.MethodGet, fmt.Sprintf("users?page=%d&per_page=100", page), nil)
		if err != nil {
			return nil, err
		}
		var parsed struct {
			Data []struct {
				Attributes struct {
					ID        int64  `json:"id"`
					Username  string `json:"username"`
					Email     string `json:"email"`
					RootAdmin bool   `json:"root_admin"`
				} `json:"attributes"`
			} `json:"data"`
			Meta struct {
				Pagination struct {
					CurrentPage int `json:"current_page"`
					TotalPages  int `json:"total_pages"`
				} `json:"pagination"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode user listing: %w", err)
		}
		for _, d := range parsed.Data {
			out = append(out, UserRecord{
				ID:       d.Attributes.ID,
				Username: d.Attributes.Username,
				Email:    d.Attributes.Email,
				Admin:    d.Attributes.RootAdmin,
			})
		}
		if parsed.Meta.Pagination.CurrentPage >= parsed.Meta.Pagination.TotalPages {
			break
		}
		page++
	}
	return out, nil
}

// ListFiles lists one remote directory of a server.
func (c *Client) ListFiles(ctx context.Context, serverID, directory string) ([]FileEntry, error) {
	path := fmt.Sprintf("servers/%s/files/list?directory=%s", serverID, url.QueryEscape(directory))
	body, err := c.ClientRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Data []struct {
			Attributes struct {
				Name   string `json:"name"`
				IsFile bool   `json:"is_file"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode file listing: %w", err)
	}
	entries := make([]FileEntry, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		entries = append(entries, FileEntry{Name: d.Attributes.Name, IsFile: d.Attributes.IsFile})
	}
	return entries, nil
}

// ReadFile fetches raw file contents. Depending on the panel generation the
// body may be a plain string, a pre-parsed JSON document or a {data: ...}
// wrapper; normalization is the caller's job.
func (c *Client) ReadFile(ctx context.Context, serverID, filePath string) (string, error) {
	path := fmt.Sprintf("servers/%s/files/contents?file=%s", serverID, url.QueryEscape(filePath))
	body, err := c.ClientRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// WriteFile creates or overwrites one file under directory.
func (c *Client) WriteFile(ctx context.Context, serverID, directory, name, content string) error {
	filePath := strings.TrimRight(directory, "/") + "/" + name
	path := fmt.Sprintf("servers/%s/files/write?file=%s", serverID, url.QueryEscape(filePath))
	_, err := c.request(ctx, http.MethodPost, "/api/client/"+path, c.clientKey, nil, content)
	return err
}

// CreateFolder creates one directory. The panel errors when the target exists;
// callers treat that as non-fatal.
func (c *Client) CreateFolder(ctx context.Context, serverID, parent, name string) error {
	path := fmt.Sprintf("servers/%s/files/create-folder", serverID)
	_, err := c.ClientRequest(ctx, http.MethodPost, path, map[string]string{
		"root": parent,
		"name": name,
	})
	return err
}

// DeleteFiles removes the named entries under root.
func (c *Client) DeleteFiles(ctx context.Context, serverID, root string, names []string) error {
	path := fmt.Sprintf("servers/%s/files/delete", serverID)
	_, err := c.ClientRequest(ctx, http.MethodPost, path, map[string]any{
		"root":  root,
		"files": names,
	})
	return err
}

// PowerAction sends start/stop/restart/kill to one server.
func (c *Client) PowerAction(ctx context.Context, serverID, signal string) error {
	path := fmt.Sprintf("servers/%s/power", serverID)
	_, err := c.ClientRequest(ctx, http.MethodPost, path, map[string]string{"signal": signal})
	return err
}

// ServerResources fetches the live usage snapshot of one server.
func (c *Client) ServerResources(ctx context.Context, serverID string) (*Resources, error) {
	body, err := c.ClientRequest(ctx, http.MethodGet, fmt.Sprintf("servers/%s/resources", serverID), nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Attributes struct {
			CurrentState string `json:"current_state"`
			IsSuspended  bool   `json:"is_suspended"`
			Resources    struct {
				MemoryBytes float64 `json:"memory_bytes"`
				CPUAbsolute float64 `json:"cpu_absolute"`
				DiskBytes   float64 `json:"disk_bytes"`
			} `json:"resources"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}
	return &Resources{
		State:       parsed.Attributes.CurrentState,
		Suspended:   parsed.Attributes.IsSuspended,
		CPUPercent:  parsed.Attributes.Resources.CPUAbsolute,
		MemoryBytes: int64(parsed.Attributes.Resources.MemoryBytes),
		DiskBytes:   int64(parsed.Attributes.Resources.DiskBytes),
	}, nil
}
