package internal

import (
	"errors"
	"sync"
	"time"

	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
	"github.com/el-pablos/TelegramME-sub000/internal/scrape"
)

// ErrFlowActive is returned when a chat tries to start a multi-step flow while
// another one is in progress for the same chat.
var ErrFlowActive = errors.New("another flow is already active for this chat")

type pendingInput int

const (
	pendingNone pendingInput = iota
	pendingBlacklistAdd
)

// UploadedFile records one payload deposited during an upload session.
type UploadedFile struct {
	OriginalName     string
	TargetServerName string
	TargetServerID   string
}

// UploadSession is the per-chat transient state of a "deposit credentials"
// flow. A destination server receives at most one payload per session: it is
// removed from AvailableServers on assignment.
type UploadSession struct {
	Files            []UploadedFile
	AvailableServers []ptero.ServerRecord
	StartTime        time.Time
}

// ScrapeBatch is the last scrape result held per chat until the user confirms
// or declines deleting the remote copies.
type ScrapeBatch struct {
	RunID     string
	PanelHost string
	External  bool
	Results   []scrape.ScrapeResult
}

// ChatState is everything in flight for one chat.
type ChatState struct {
	Upload     *UploadSession
	LastScrape *ScrapeBatch
	Pending    pendingInput
}

// SessionStore keeps per-chat flow state in memory, keyed by chat id. One
// writer per key is assumed: flows for different chats are independent by
// construction, and starting a second flow for the same chat is rejected
// instead of silently overwriting the first. Nothing is persisted; a process
// restart drops all in-flight flows.
type SessionStore struct {
	mu     sync.Mutex
	states map[int64]*ChatState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{states: make(map[int64]*ChatState)}
}

// Get returns the state for a chat, or nil when none exists.
func (s *SessionStore) Get(chatID int64) *ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[chatID]
}

func (s *SessionStore) ensure(chatID int64) *ChatState {
	state, ok := s.states[chatID]
	if !ok {
		state = &ChatState{}
		s.states[chatID] = state
	}
	return state
}

// BeginUpload starts a deposit flow. Fails with ErrFlowActive when the chat
// already has an upload session or pending input.
func (s *SessionStore) BeginUpload(chatID int64, servers []ptero.ServerRecord) (*UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.ensure(chatID)
	if state.Upload != nil || state.Pending != pendingNone {
		return nil, ErrFlowActive
	}
	state.Upload = &UploadSession{
		AvailableServers: servers,
		StartTime:        time.Now(),
	}
	return state.Upload, nil
}

// UploadActive reports whether a deposit flow is running for the chat.
func (s *SessionStore) UploadActive(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	return ok && state.Upload != nil
}

// TakeNextDestination pops the next free destination of the chat's deposit
// flow. Popping under the store mutex is what keeps a destination from being
// handed to two documents arriving at the same time.
func (s *SessionStore) TakeNextDestination(chatID int64) (ptero.ServerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok || state.Upload == nil || len(state.Upload.AvailableServers) == 0 {
		return ptero.ServerRecord{}, false
	}
	dest := state.Upload.AvailableServers[0]
	state.Upload.AvailableServers = state.Upload.AvailableServers[1:]
	return dest, true
}

// RestoreDestination puts a destination back at the front of the pool after a
// failed write so the next document can use it.
func (s *SessionStore) RestoreDestination(chatID int64, dest ptero.ServerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok || state.Upload == nil {
		return
	}
	state.Upload.AvailableServers = append([]ptero.ServerRecord{dest}, state.Upload.AvailableServers...)
}

// RecordUpload appends a finished upload and returns how many destinations
// remain in the pool.
func (s *SessionStore) RecordUpload(chatID int64, file UploadedFile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok || state.Upload == nil {
		return 0
	}
	state.Upload.Files = append(state.Upload.Files, file)
	return len(state.Upload.AvailableServers)
}

// EndUpload tears down the deposit flow and returns it for reporting.
func (s *SessionStore) EndUpload(chatID int64) *UploadSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok || state.Upload == nil {
		return nil
	}
	session := state.Upload
	state.Upload = nil
	return session
}

// BeginPendingInput arms a one-shot text input (e.g. blacklist add).
func (s *SessionStore) BeginPendingInput(chatID int64, kind pendingInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.ensure(chatID)
	if state.Upload != nil || state.Pending != pendingNone {
		return ErrFlowActive
	}
	state.Pending = kind
	return nil
}

// PeekPendingInput returns the armed input kind without disarming it, so a
// message from the wrong sender cannot consume someone else's prompt.
func (s *SessionStore) PeekPendingInput(chatID int64) pendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok {
		return pendingNone
	}
	return state.Pending
}

// TakePendingInput disarms and returns the pending input kind.
func (s *SessionStore) TakePendingInput(chatID int64) pendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok {
		return pendingNone
	}
	kind := state.Pending
	state.Pending = pendingNone
	return kind
}

// SetLastScrape stores the batch pending the remote-delete confirmation.
func (s *SessionStore) SetLastScrape(chatID int64, batch *ScrapeBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(chatID).LastScrape = batch
}

// TakeLastScrape consumes the pending batch.
func (s *SessionStore) TakeLastScrape(chatID int64) *ScrapeBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[chatID]
	if !ok || state.LastScrape == nil {
		return nil
	}
	batch := state.LastScrape
	state.LastScrape = nil
	return batch
}

// Delete drops all state for a chat.
func (s *SessionStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}
