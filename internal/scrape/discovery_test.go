package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
)

// fakeFileAPI serves canned directory listings and file contents keyed by
// server identifier.
type fakeFileAPI struct {
	listings map[string]map[string][]ptero.FileEntry
	contents map[string]map[string]string
	listErr  map[string]error
	readErr  map[string]error
}

func (f *fakeFileAPI) ListFiles(_ context.Context, serverID, directory string) ([]ptero.FileEntry, error) {
	if err, ok := f.listErr[serverID]; ok {
		return nil, err
	}
	dirs, ok := f.listings[serverID]
	if !ok {
		return nil, &ptero.UpstreamError{Method: "GET", Status: 404}
	}
	entries, ok := dirs[directory]
	if !ok {
		return nil, &ptero.UpstreamError{Method: "GET", Status: 404}
	}
	return entries, nil
}

func (f *fakeFileAPI) ReadFile(_ context.Context, serverID, filePath string) (string, error) {
	if err, ok := f.readErr[serverID]; ok {
		return "", err
	}
	files, ok := f.contents[serverID]
	if !ok {
		return "", &ptero.UpstreamError{Method: "GET", Status: 404}
	}
	content, ok := files[filePath]
	if !ok {
		return "", &ptero.UpstreamError{Method: "GET", Status: 404}
	}
	return content, nil
}

func fileEntry(name string) ptero.FileEntry {
	return ptero.FileEntry{Name: name, IsFile: true}
}

func TestFindEquivalentAcrossResponseShapes(t *testing.T) {
	// The same document, served in the three shapes the contents endpoint
	// produces, must come back as one identical payload.
	api := &fakeFileAPI{
		listings: map[string]map[string][]ptero.FileEntry{
			"srv-a": {"/session": {fileEntry("creds.json")}},
			"srv-b": {"/session": {fileEntry("creds.json")}},
			"srv-c": {"/session": {fileEntry("creds.json")}},
		},
		contents: map[string]map[string]string{
			"srv-a": {"/session/creds.json": `{"token":"abc","id":7}`},
			"srv-b": {"/session/creds.json": "{\n  \"id\": 7,\n  \"token\": \"abc\"\n}"},
			"srv-c": {"/session/creds.json": `{"data":"{\"token\":\"abc\",\"id\":7}"}`},
		},
	}
	engine := NewEngine(api)

	payloads := make(map[string]bool)
	for _, id := range []string{"srv-a", "srv-b", "srv-c"} {
		discovery, err := engine.Find(context.Background(), id)
		if err != nil {
			t.Fatalf("Find(%s) failed: %v", id, err)
		}
		if discovery == nil {
			t.Fatalf("Find(%s) found nothing", id)
		}
		payloads[discovery.Payload] = true
	}
	if len(payloads) != 1 {
		t.Errorf("Expected one canonical payload across shapes, got %d: %v", len(payloads), payloads)
	}
}

func TestFindFallsBackThroughCandidateDirs(t *testing.T) {
	api := &fakeFileAPI{
		listings: map[string]map[string][]ptero.FileEntry{
			"srv": {"/files": {fileEntry("backup.json")}},
		},
		contents: map[string]map[string]string{
			"srv": {"/files/backup.json": `{"k":1}`},
		},
	}
	discovery, err := NewEngine(api).Find(context.Background(), "srv")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if discovery == nil {
		t.Fatal("Expected a discovery from the fallback directory")
	}
	if discovery.FoundPath != "/files/backup.json" {
		t.Errorf("FoundPath mismatch: got %q", discovery.FoundPath)
	}
}

func TestFindPrefersCredsJSON(t *testing.T) {
	api := &fakeFileAPI{
		listings: map[string]map[string][]ptero.FileEntry{
			"srv": {"/session": {
				fileEntry("other.json"),
				{Name: "logs", IsFile: false},
				fileEntry("creds.json"),
			}},
		},
		contents: map[string]map[string]string{
			"srv": {
				"/session/other.json": `{"wrong":true}`,
				"/session/creds.json": `{"right":true}`,
			},
		},
	}
	discovery, err := NewEngine(api).Find(context.Background(), "srv")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if discovery == nil || discovery.FoundPath != "/session/creds.json" {
		t.Errorf("Expected creds.json to win, got %+v", discovery)
	}
}

func TestFindServerUnreachable(t *testing.T) {
	api := &fakeFileAPI{
		listErr: map[string]error{
			"srv": &ptero.UpstreamError{Method: "GET", Status: 409},
		},
	}
	discovery, err := NewEngine(api).Find(context.Background(), "srv")
	if err != nil {
		t.Fatalf("A 409 must not be an error: %v", err)
	}
	if discovery != nil {
		t.Errorf("A 409 must count as not found, got %+v", discovery)
	}
}

func TestFindNothingToFind(t *testing.T) {
	api := &fakeFileAPI{
		listings: map[string]map[string][]ptero.FileEntry{
			"srv": {
				"/session": {{Name: "node_modules", IsFile: false}},
				"/":        {fileEntry("server.properties")},
			},
		},
	}
	discovery, err := NewEngine(api).Find(context.Background(), "srv")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if discovery != nil {
		t.Errorf("Expected nil discovery, got %+v", discovery)
	}
}

func TestFindPropagatesProtectionBlock(t *testing.T) {
	api := &fakeFileAPI{
		listErr: map[string]error{
			"srv": &ptero.ProtectionBlockedError{Host: "panel.example.com", Attempts: 4},
		},
	}
	_, err := NewEngine(api).Find(context.Background(), "srv")
	var blocked *ptero.ProtectionBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Expected the protection block to surface, got %v", err)
	}
}

func TestFindSkipsUnparseableContent(t *testing.T) {
	api := &fakeFileAPI{
		listings: map[string]map[string][]ptero.FileEntry{
			"srv": {"/session": {fileEntry("creds.json")}},
		},
		contents: map[string]map[string]string{
			"srv": {"/session/creds.json": "definitely not json"},
		},
	}
	discovery, err := NewEngine(api).Find(context.Background(), "srv")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if discovery != nil {
		t.Errorf("Unparseable content must not produce a discovery, got %+v", discovery)
	}
}
