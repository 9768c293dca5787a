package internal

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/el-pablos/TelegramME-sub000/internal/database"
	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
	"github.com/el-pablos/TelegramME-sub000/internal/scrape"
)

// Interfaces for the services the handler consumes

// Panel is the slice of the panel client the dispatch shell uses directly.
type Panel interface {
	Host() string
	ListServers(ctx context.Context) ([]ptero.ServerRecord, error)
	ListUsers(ctx context.Context) ([]ptero.UserRecord, error)
	PowerAction(ctx context.Context, serverID, signal string) error
	ServerResources(ctx context.Context, serverID string) (*ptero.Resources, error)
	WriteFile(ctx context.Context, serverID, directory, name, content string) error
	CreateFolder(ctx context.Context, serverID, parent, name string) error
	ListFiles(ctx context.Context, serverID, directory string) ([]ptero.FileEntry, error)
}

// Scraper runs batch scrape/distribute operations against one source panel.
type Scraper interface {
	ScrapeAll(ctx context.Context) ([]scrape.ScrapeResult, scrape.Counters, error)
	DistributeRoundRobin(ctx context.Context, payloads []scrape.Payload, destinations []ptero.ServerRecord) []scrape.AssignmentResult
	DeleteRemoteAfterScrape(ctx context.Context, serverID string) error
}

// AuditReader is the read side of the run history.
type AuditReader interface {
	RecentRuns(limit int) ([]database.Run, error)
	ResultsForRun(runID string) ([]database.RunResult, error)
}

// BlacklistRepository holds disallowed panel domains. Mutations are
// write-through to disk.
type BlacklistRepository interface {
	List() []string
	Add(domain string) error
	Remove(index int) (string, error)
	Contains(domain string) bool
}

// BotAPI is the slice of tgbotapi the handler uses; tests substitute a fake.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// BotAPIAdapter adapts the concrete tgbotapi client to the BotAPI interface.
type BotAPIAdapter struct {
	*tgbotapi.BotAPI
}

func (a *BotAPIAdapter) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return a.BotAPI.Send(c)
}

func (a *BotAPIAdapter) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return a.BotAPI.Request(c)
}

func (a *BotAPIAdapter) GetFileDirectURL(fileID string) (string, error) {
	return a.BotAPI.GetFileDirectURL(fileID)
}
