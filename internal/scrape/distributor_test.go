package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
)

// fakePanel is an in-memory stand-in for the panel API used by the
// distributor tests. Writes and deletes are recorded for assertions.
type fakePanel struct {
	fakeFileAPI
	servers    []ptero.ServerRecord
	listSrvErr error

	writes   []writeCall
	writeErr map[string]error
	folders  []folderCall
	deletes  []deleteCall
	delErr   map[string]error
}

type writeCall struct {
	serverID, directory, name, content string
}

type folderCall struct {
	serverID, parent, name string
}

type deleteCall struct {
	serverID, root string
	names          []string
}

func (p *fakePanel) Host() string { return "panel.example.com" }

func (p *fakePanel) ListServers(_ context.Context) ([]ptero.ServerRecord, error) {
	if p.listSrvErr != nil {
		return nil, p.listSrvErr
	}
	return p.servers, nil
}

func (p *fakePanel) WriteFile(_ context.Context, serverID, directory, name, content string) error {
	if err, ok := p.writeErr[serverID]; ok {
		return err
	}
	p.writes = append(p.writes, writeCall{serverID, directory, name, content})
	return nil
}

func (p *fakePanel) CreateFolder(_ context.Context, serverID, parent, name string) error {
	p.folders = append(p.folders, folderCall{serverID, parent, name})
	return nil
}

func (p *fakePanel) DeleteFiles(_ context.Context, serverID, root string, names []string) error {
	call := deleteCall{serverID, root, names}
	p.deletes = append(p.deletes, call)
	if err, ok := p.delErr[root]; ok {
		return err
	}
	return nil
}

func server(id, name string) ptero.ServerRecord {
	return ptero.ServerRecord{Identifier: id, Name: name}
}

// emptyDir marks a destination as reachable with an empty session directory.
func emptyDir() map[string][]ptero.FileEntry {
	return map[string][]ptero.FileEntry{"/session": {}}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"My Server #1":   "My_Server_1",
		"plain":          "plain",
		"weird///name..": "weird_name_",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScrapeAllEmptyPanel(t *testing.T) {
	panel := &fakePanel{}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	results, counters, err := d.ScrapeAll(context.Background())
	if err != nil {
		t.Fatalf("ScrapeAll failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if counters != (Counters{}) {
		t.Errorf("Expected zero counters, got %+v", counters)
	}
}

func TestScrapeAllListFailureAborts(t *testing.T) {
	panel := &fakePanel{listSrvErr: errors.New("boom")}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	if _, _, err := d.ScrapeAll(context.Background()); err == nil {
		t.Fatal("Expected the run to abort when the server list is unavailable")
	}
}

func TestScrapeAllSurvivesSingleServerFailure(t *testing.T) {
	doc := `{"token":"abc"}`
	panel := &fakePanel{
		servers: []ptero.ServerRecord{
			server("s1", "Alpha"), server("s2", "Bravo"), server("s3", "Charlie"),
			server("s4", "Delta"), server("s5", "Echo"),
		},
		fakeFileAPI: fakeFileAPI{
			listings: map[string]map[string][]ptero.FileEntry{
				"s1": {"/session": {fileEntry("creds.json")}},
				"s2": {"/session": {fileEntry("creds.json")}},
				"s4": {"/session": {fileEntry("creds.json")}},
				"s5": {"/session": {fileEntry("creds.json")}},
			},
			contents: map[string]map[string]string{
				"s1": {"/session/creds.json": doc},
				"s2": {"/session/creds.json": doc},
				"s4": {"/session/creds.json": doc},
				"s5": {"/session/creds.json": doc},
			},
			listErr: map[string]error{
				"s3": &ptero.ProtectionBlockedError{Host: "panel.example.com", Attempts: 4},
			},
		},
	}

	outputDir := filepath.Join(t.TempDir(), "scraped")
	d := NewDistributor(panel, outputDir, time.Millisecond, nil)

	results, counters, err := d.ScrapeAll(context.Background())
	if err != nil {
		t.Fatalf("ScrapeAll failed: %v", err)
	}
	if counters.Scraped != 4 || counters.Errored != 1 || counters.Skipped != 0 {
		t.Fatalf("Counters mismatch: %+v", counters)
	}
	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}

	// The payload written locally must still be the document the panel served.
	written, err := os.ReadFile(results[0].LocalPath)
	if err != nil {
		t.Fatalf("Failed to read local copy: %v", err)
	}
	var got, want map[string]any
	if err := json.Unmarshal(written, &got); err != nil {
		t.Fatalf("Local copy is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(doc), &want); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Local copy mismatch: got %v, want %v", got, want)
	}
	if results[0].FileName != "Alpha.json" {
		t.Errorf("FileName mismatch: got %q", results[0].FileName)
	}
}

func TestDistributeRoundRobinAssignsEachPayloadOnce(t *testing.T) {
	panel := &fakePanel{
		fakeFileAPI: fakeFileAPI{
			listings: map[string]map[string][]ptero.FileEntry{
				"d1": emptyDir(), "d2": emptyDir(), "d3": emptyDir(),
			},
		},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	payloads := []Payload{
		{Name: "a.json", Content: `{"a":1}`},
		{Name: "b.json", Content: `{"b":2}`},
	}
	dests := []ptero.ServerRecord{server("d1", "One"), server("d2", "Two"), server("d3", "Three")}

	results := d.DistributeRoundRobin(context.Background(), payloads, dests)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Status != Assigned {
			t.Errorf("Payload %s: expected assignment, got %s (%v)", r.PayloadName, r.Status, r.Err)
		}
		if seen[r.ServerID] {
			t.Errorf("Destination %s used twice", r.ServerID)
		}
		seen[r.ServerID] = true
	}
	for _, w := range panel.writes {
		if w.directory != "/session" || w.name != "creds.json" {
			t.Errorf("Unexpected write target: %+v", w)
		}
	}
}

func TestDistributeRoundRobinRunsOutOfDestinations(t *testing.T) {
	panel := &fakePanel{
		fakeFileAPI: fakeFileAPI{
			listings: map[string]map[string][]ptero.FileEntry{"d1": emptyDir()},
		},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	payloads := []Payload{
		{Name: "a.json", Content: `{"a":1}`},
		{Name: "b.json", Content: `{"b":2}`},
	}
	results := d.DistributeRoundRobin(context.Background(), payloads, []ptero.ServerRecord{server("d1", "One")})
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Status != Assigned {
		t.Errorf("First payload: got %s", results[0].Status)
	}
	if results[1].Status != SkippedNoDestination {
		t.Errorf("Second payload: got %s, want %s", results[1].Status, SkippedNoDestination)
	}
}

func TestDistributeSkipsPopulatedDestination(t *testing.T) {
	panel := &fakePanel{
		fakeFileAPI: fakeFileAPI{
			listings: map[string]map[string][]ptero.FileEntry{
				"full":  {"/session": {fileEntry("creds.json")}},
				"empty": emptyDir(),
			},
		},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	results := d.DistributeRoundRobin(context.Background(),
		[]Payload{{Name: "a.json", Content: `{"a":1}`}},
		[]ptero.ServerRecord{server("full", "Full"), server("empty", "Empty")})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != Assigned || results[0].ServerID != "empty" {
		t.Errorf("Expected assignment to the empty destination, got %+v", results[0])
	}
}

func TestDistributeSkipsUnreachableDestination(t *testing.T) {
	panel := &fakePanel{
		fakeFileAPI: fakeFileAPI{
			listings: map[string]map[string][]ptero.FileEntry{"ok": emptyDir()},
			listErr: map[string]error{
				"offline": &ptero.UpstreamError{Method: "GET", Status: 409},
			},
		},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	results := d.DistributeRoundRobin(context.Background(),
		[]Payload{{Name: "a.json", Content: `{"a":1}`}},
		[]ptero.ServerRecord{server("offline", "Offline"), server("ok", "OK")})
	if results[0].Status != Assigned || results[0].ServerID != "ok" {
		t.Errorf("Expected the offline destination to be skipped, got %+v", results[0])
	}
}

func TestDistributeCreatesMissingSessionDir(t *testing.T) {
	// Listing /session fails with a 404 on a fresh destination; the
	// distributor creates the directory and proceeds.
	panel := &fakePanel{}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	results := d.DistributeRoundRobin(context.Background(),
		[]Payload{{Name: "a.json", Content: `{"a":1}`}},
		[]ptero.ServerRecord{server("fresh", "Fresh")})
	if results[0].Status != Assigned {
		t.Fatalf("Expected assignment, got %+v", results[0])
	}
	if len(panel.folders) != 1 || panel.folders[0].name != "session" {
		t.Errorf("Expected one session folder creation, got %+v", panel.folders)
	}
}

func TestDistributePrepareFatalError(t *testing.T) {
	// A protection block while probing a destination is a real failure, not
	// an offline server to silently skip.
	panel := &fakePanel{
		fakeFileAPI: fakeFileAPI{
			listErr: map[string]error{
				"blocked": &ptero.ProtectionBlockedError{Host: "panel.example.com", Attempts: 4},
			},
		},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	results := d.DistributeRoundRobin(context.Background(),
		[]Payload{{Name: "a.json", Content: `{"a":1}`}},
		[]ptero.ServerRecord{server("blocked", "Blocked")})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != FailedWrite {
		t.Fatalf("Expected failure status, got %+v", results[0])
	}
	var blocked *ptero.ProtectionBlockedError
	if !errors.As(results[0].Err, &blocked) {
		t.Errorf("Expected the protection block attached, got %v", results[0].Err)
	}
}

func TestDistributeReportsWriteFailure(t *testing.T) {
	panel := &fakePanel{
		fakeFileAPI: fakeFileAPI{
			listings: map[string]map[string][]ptero.FileEntry{"d1": emptyDir()},
		},
		writeErr: map[string]error{"d1": errors.New("disk full")},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	results := d.DistributeRoundRobin(context.Background(),
		[]Payload{{Name: "a.json", Content: `{"a":1}`}},
		[]ptero.ServerRecord{server("d1", "One")})
	if results[0].Status != FailedWrite {
		t.Fatalf("Expected write failure, got %+v", results[0])
	}
	if results[0].Err == nil {
		t.Error("Expected the write error to be attached")
	}
}

func TestDeleteRemoteAfterScrapeFallsThrough(t *testing.T) {
	panel := &fakePanel{
		delErr: map[string]error{"/": errors.New("not found")},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	if err := d.DeleteRemoteAfterScrape(context.Background(), "srv"); err != nil {
		t.Fatalf("Expected the second granularity to succeed: %v", err)
	}
	if len(panel.deletes) != 2 {
		t.Fatalf("Expected 2 delete attempts, got %d", len(panel.deletes))
	}
	if panel.deletes[1].root != "/session" || panel.deletes[1].names[0] != "creds.json" {
		t.Errorf("Unexpected second attempt: %+v", panel.deletes[1])
	}
}

func TestDeleteRemoteAfterScrapeAllFail(t *testing.T) {
	panel := &fakePanel{
		delErr: map[string]error{
			"/":        errors.New("not found"),
			"/session": errors.New("not found"),
		},
	}
	d := NewDistributor(panel, "", time.Millisecond, nil)

	if err := d.DeleteRemoteAfterScrape(context.Background(), "srv"); err == nil {
		t.Fatal("Expected an error when every granularity fails")
	}
	if len(panel.deletes) != 3 {
		t.Errorf("Expected 3 delete attempts, got %d", len(panel.deletes))
	}
}
