package scrape

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
)

// Panel is the slice of the panel API the distributor needs on top of FileAPI.
type Panel interface {
	FileAPI
	Host() string
	ListServers(ctx context.Context) ([]ptero.ServerRecord, error)
	WriteFile(ctx context.Context, serverID, directory, name, content string) error
	CreateFolder(ctx context.Context, serverID, parent, name string) error
	DeleteFiles(ctx context.Context, serverID, root string, names []string) error
}

// AuditRecorder persists run history. A nil recorder disables auditing.
type AuditRecorder interface {
	StartRun(kind, panelHost string) (string, error)
	RecordResult(runID string, result ScrapeResult) error
	FinishRun(runID string, counters Counters) error
}

// ScrapeResult is one successfully discovered credential payload.
type ScrapeResult struct {
	ServerName string
	ServerUUID string
	FileName   string
	LocalPath  string
	FoundPath  string
	ByteSize   int
	Payload    string
}

// Counters accumulate per-server outcomes of one scrape run.
type Counters struct {
	Scraped int
	Skipped int
	Errored int
}

// Payload is one credential document queued for distribution.
type Payload struct {
	Name    string
	Content string
}

// AssignmentStatus reports what happened to one payload during distribution.
type AssignmentStatus string

const (
	Assigned             AssignmentStatus = "assigned"
	SkippedNoDestination AssignmentStatus = "no destination available"
	FailedWrite          AssignmentStatus = "write failed"
)

// AssignmentResult maps one payload to the destination it was written to.
type AssignmentResult struct {
	PayloadName string
	ServerName  string
	ServerID    string
	Status      AssignmentStatus
	Err         error
}

// Distributor runs the discovery engine across every server of a source panel,
// persists discovered payloads locally as an audit trail and pushes them onto
// destination servers round-robin. Servers are processed strictly sequentially
// with deliberate pacing between iterations to respect upstream rate limits.
type Distributor struct {
	panel     Panel
	engine    *Engine
	outputDir string
	limiter   *rate.Limiter
	audit     AuditRecorder
}

func NewDistributor(panel Panel, outputDir string, serverDelay time.Duration, audit AuditRecorder) *Distributor {
	return &Distributor{
		panel:     panel,
		engine:    NewEngine(panel),
		outputDir: outputDir,
		limiter:   rate.NewLimiter(rate.Every(serverDelay), 1),
		audit:     audit,
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SanitizeName derives a local filename from a server name.
func SanitizeName(serverName string) string {
	return nonAlphanumeric.ReplaceAllString(serverName, "_")
}

// ScrapeAll enumerates every server of the source panel and collects their
// credential payloads. Per-server failures are counted and the loop continues;
// only a failure to list servers at all aborts the run.
func (d *Distributor) ScrapeAll(ctx context.Context) ([]ScrapeResult, Counters, error) {
	var counters Counters

	servers, err := d.panel.ListServers(ctx)
	if err != nil {
		return nil, counters, fmt.Errorf("failed to list servers on %s: %w", d.panel.Host(), err)
	}

	runID := ""
	if d.audit != nil {
		runID, err = d.audit.StartRun("scrape", d.panel.Host())
		if err != nil {
			log.Printf("WARNING: failed to record scrape run start: %v", err)
		}
	}

	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
			return nil, counters, fmt.Errorf("failed to create output directory %s: %w", d.outputDir, err)
		}
	}

	var results []ScrapeResult
	for _, server := range servers {
		if err := d.limiter.Wait(ctx); err != nil {
			break
		}

		discovery, err := d.engine.Find(ctx, server.Identifier)
		if err != nil {
			counters.Errored++
			log.Printf("WARNING: scrape failed for %s: %v", server.Name, err)
			continue
		}
		if discovery == nil {
			counters.Skipped++
			continue
		}

		fileName := SanitizeName(server.Name) + ".json"
		localPath := ""
		if d.outputDir != "" {
			localPath = filepath.Join(d.outputDir, fileName)
			if err := os.WriteFile(localPath, []byte(discovery.Payload), 0o644); err != nil {
				counters.Errored++
				log.Printf("WARNING: failed to write %s: %v", localPath, err)
				continue
			}
		}

		result := ScrapeResult{
			ServerName: server.Name,
			ServerUUID: server.Identifier,
			FileName:   fileName,
			LocalPath:  localPath,
			FoundPath:  discovery.FoundPath,
			ByteSize:   len(discovery.Payload),
			Payload:    discovery.Payload,
		}
		results = append(results, result)
		counters.Scraped++

		if d.audit != nil && runID != "" {
			if err := d.audit.RecordResult(runID, result); err != nil {
				log.Printf("WARNING: failed to record scrape result: %v", err)
			}
		}
	}

	if d.audit != nil && runID != "" {
		if err := d.audit.FinishRun(runID, counters); err != nil {
			log.Printf("WARNING: failed to record scrape run finish: %v", err)
		}
	}

	return results, counters, nil
}

// DistributeRoundRobin writes each payload as creds.json onto the next
// eligible destination. Eligibility is checked on demand: a destination is
// consumed once assigned, and one already holding creds.json is dropped from
// the pool, which makes an interrupted run safe to repeat.
func (d *Distributor) DistributeRoundRobin(ctx context.Context, payloads []Payload, destinations []ptero.ServerRecord) []AssignmentResult {
	pool := make([]ptero.ServerRecord, len(destinations))
	copy(pool, destinations)

	results := make([]AssignmentResult, 0, len(payloads))
	for _, payload := range payloads {
		if err := d.limiter.Wait(ctx); err != nil {
			break
		}

		assigned := false
		for len(pool) > 0 {
			dest := pool[0]
			pool = pool[1:]

			eligible, err := d.prepareDestination(ctx, dest.Identifier)
			if err != nil {
				results = append(results, AssignmentResult{
					PayloadName: payload.Name,
					ServerName:  dest.Name,
					ServerID:    dest.Identifier,
					Status:      FailedWrite,
					Err:         err,
				})
				assigned = true
				break
			}
			if !eligible {
				continue
			}

			if err := d.panel.WriteFile(ctx, dest.Identifier, "/session", "creds.json", payload.Content); err != nil {
				results = append(results, AssignmentResult{
					PayloadName: payload.Name,
					ServerName:  dest.Name,
					ServerID:    dest.Identifier,
					Status:      FailedWrite,
					Err:         err,
				})
			} else {
				results = append(results, AssignmentResult{
					PayloadName: payload.Name,
					ServerName:  dest.Name,
					ServerID:    dest.Identifier,
					Status:      Assigned,
				})
			}
			assigned = true
			break
		}

		if !assigned {
			results = append(results, AssignmentResult{
				PayloadName: payload.Name,
				Status:      SkippedNoDestination,
			})
		}
	}
	return results
}

// prepareDestination checks whether a destination can receive a payload,
// creating its session directory when missing. The create is an idempotent
// attempt: an "already exists" failure from the panel is swallowed. A
// protection block or cancelled context comes back as a real error.
func (d *Distributor) prepareDestination(ctx context.Context, serverID string) (bool, error) {
	entries, err := d.panel.ListFiles(ctx, serverID, "/session")
	if err != nil {
		if isServerUnreachable(err) {
			return false, nil
		}
		if isFatal(err) {
			return false, err
		}
		// No session directory yet; try to create it and treat failure as
		// "already exists" noise.
		_ = d.panel.CreateFolder(ctx, serverID, "/", "session")
		return true, nil
	}
	for _, entry := range entries {
		if entry.IsFile && entry.Name == "creds.json" {
			return false, nil
		}
	}
	return true, nil
}

// DeleteRemoteAfterScrape removes the scraped credential file from a source
// server, trying three decreasing granularities and stopping at the first
// that succeeds. Failure of all three is reported, not raised further.
func (d *Distributor) DeleteRemoteAfterScrape(ctx context.Context, serverID string) error {
	attempts := []struct {
		root  string
		names []string
	}{
		{"/", []string{"session"}},
		{"/session", []string{"creds.json"}},
		{"/", []string{"creds.json"}},
	}

	var lastErr error
	for _, attempt := range attempts {
		if err := d.panel.DeleteFiles(ctx, serverID, attempt.root, attempt.names); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to delete remote credentials on %s: %w", serverID, lastErr)
}
