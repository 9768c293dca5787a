package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
	"github.com/el-pablos/TelegramME-sub000/internal/scrape"
)

const maxUploadBytes = 512 * 1024

// BotHandler routes Telegram commands and callbacks to panel operations and
// renders their results back as chat messages.
type BotHandler struct {
	bot        BotAPI
	config     BotConfig
	mainPanel  Panel
	extPanel   Panel
	mainScrape Scraper
	extScrape  Scraper
	audit      AuditReader
	blacklist  BlacklistRepository
	sessions   *SessionStore
	downloader *http.Client
}

func NewBotHandler(
	bot BotAPI,
	config BotConfig,
	mainPanel Panel,
	extPanel Panel,
	mainScrape Scraper,
	extScrape Scraper,
	audit AuditReader,
	blacklist BlacklistRepository,
) *BotHandler {
	return &BotHandler{
		bot:        bot,
		config:     config,
		mainPanel:  mainPanel,
		extPanel:   extPanel,
		mainScrape: mainScrape,
		extScrape:  extScrape,
		audit:      audit,
		blacklist:  blacklist,
		sessions:   NewSessionStore(),
		downloader: &http.Client{Timeout: 45 * time.Second},
	}
}

func (h *BotHandler) isOwner(userID int64) bool {
	return userID == h.config.OwnerID
}

// esc escapes arbitrary upstream text so it cannot break message formatting.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func (h *BotHandler) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("WARNING: failed to send message: %v", err)
	}
}

func (h *BotHandler) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("WARNING: failed to send message: %v", err)
	}
}

// sendError renders an operation failure, giving upstream protection blocks a
// dedicated message instead of a raw error dump.
func (h *BotHandler) sendError(chatID int64, op string, err error) {
	var blocked *ptero.ProtectionBlockedError
	if errors.As(err, &blocked) {
		h.send(chatID, fmt.Sprintf(
			"🛡 %s failed: the panel at `%s` is behind bot protection and kept serving challenge pages.\n"+
				"Ask the host to allowlist this bot's IP, or upload the files manually.",
			op, esc(blocked.Host)))
		return
	}
	h.send(chatID, fmt.Sprintf("❌ %s failed: %s", op, esc(err.Error())))
}

func (h *BotHandler) HandleMessage(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.Document != nil {
		h.handleDocument(chatID, userID, msg.Document)
		return
	}

	if !msg.IsCommand() {
		// Peek before consuming: a bystander's message in a group chat must
		// not disarm the owner's pending prompt.
		if h.sessions.PeekPendingInput(chatID) == pendingBlacklistAdd && h.isOwner(userID) {
			h.sessions.TakePendingInput(chatID)
			h.handleBlacklistAddInput(chatID, msg.Text)
		}
		return
	}

	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	switch command {
	case "start", "help":
		h.handleHelp(chatID)
		return
	}

	if !h.isOwner(userID) {
		h.send(chatID, "🚫 This bot only answers to its owner.")
		return
	}

	switch command {
	case "servers":
		h.handleServers(chatID)
	case "status":
		h.handleStatus(chatID, args)
	case "power":
		h.handlePower(chatID, args)
	case "restartall":
		h.handleRestartAllPrompt(chatID)
	case "users":
		h.handleUsers(chatID)
	case "scrape":
		h.handleScrape(chatID, false)
	case "scrapeext":
		h.handleScrape(chatID, true)
	case "distribute":
		h.handleDistribute(chatID)
	case "deposit":
		h.handleDeposit(chatID)
	case "done":
		h.handleDone(chatID)
	case "cancel":
		h.handleCancel(chatID)
	case "blacklist":
		h.handleBlacklist(chatID)
	case "history":
		h.handleHistory(chatID)
	default:
		h.send(chatID, "Unknown command. See /help.")
	}
}

func (h *BotHandler) handleHelp(chatID int64) {
	h.send(chatID,
		"*Panel console*\n"+
			"/servers — list servers on the main panel\n"+
			"/status `<name>` — live usage of one server\n"+
			"/power `<signal>` `<name>` — start|stop|restart|kill\n"+
			"/restartall — restart every server\n"+
			"/users — panel accounts\n\n"+
			"*Credentials*\n"+
			"/scrape — collect creds.json from the main panel\n"+
			"/scrapeext — collect from the external panel\n"+
			"/distribute — move external creds onto main servers\n"+
			"/deposit — upload .json files to distribute by hand\n"+
			"/done, /cancel — finish or abort the upload\n\n"+
			"*Admin*\n"+
			"/blacklist — manage blocked panel domains\n"+
			"/history — recent scrape runs")
}

// ---------- panel commands ----------

func (h *BotHandler) handleServers(chatID int64) {
	servers, err := h.mainPanel.ListServers(context.Background())
	if err != nil {
		h.sendError(chatID, "Listing servers", err)
		return
	}
	if len(servers) == 0 {
		h.send(chatID, "No servers visible on the main panel.")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Servers on %s* (%d)\n", esc(h.mainPanel.Host()), len(servers))
	for _, s := range servers {
		fmt.Fprintf(&b, "• %s — `%s`\n", esc(s.Name), s.Identifier)
	}
	h.send(chatID, b.String())
}

// resolveServer matches a server by exact name first, then by prefix.
func (h *BotHandler) resolveServer(ctx context.Context, name string) (*ptero.ServerRecord, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("server name is required")
	}
	servers, err := h.mainPanel.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	lc := strings.ToLower(strings.TrimSpace(name))
	var matches []ptero.ServerRecord
	for _, s := range servers {
		n := strings.ToLower(s.Name)
		if n == lc {
			matched := s
			return &matched, nil
		}
		if strings.HasPrefix(n, lc) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no server matched name '%s' (use /servers)", name)
	}
	if len(matches) > 1 {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return nil, fmt.Errorf("ambiguous: matched %d servers: %s", len(matches), strings.Join(names, ", "))
	}
	return &matches[0], nil
}

func (h *BotHandler) handleStatus(chatID int64, name string) {
	ctx := context.Background()
	server, err := h.resolveServer(ctx, name)
	if err != nil {
		h.sendError(chatID, "Status", err)
		return
	}
	res, err := h.mainPanel.ServerResources(ctx, server.Identifier)
	if err != nil {
		h.sendError(chatID, "Status", err)
		return
	}
	suspended := ""
	if res.Suspended {
		suspended = " (suspended)"
	}
	h.send(chatID, fmt.Sprintf(
		"*%s* — `%s`\nState: *%s*%s\nCPU: %.1f%%  Mem: %.1f MiB  Disk: %.1f GiB",
		esc(server.Name), server.Identifier, res.State, suspended,
		res.CPUPercent,
		float64(res.MemoryBytes)/(1024*1024),
		float64(res.DiskBytes)/(1024*1024*1024)))
}

var powerSignals = map[string]bool{"start": true, "stop": true, "restart": true, "kill": true}

func (h *BotHandler) handlePower(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 || !powerSignals[fields[0]] {
		h.send(chatID, "Usage: /power `start|stop|restart|kill` `<server name>`")
		return
	}
	signal := fields[0]
	name := strings.Join(fields[1:], " ")

	ctx := context.Background()
	server, err := h.resolveServer(ctx, name)
	if err != nil {
		h.sendError(chatID, "Power", err)
		return
	}
	if err := h.mainPanel.PowerAction(ctx, server.Identifier, signal); err != nil {
		h.sendError(chatID, "Power", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Issued `%s` to *%s*.", signal, esc(server.Name)))
}

func (h *BotHandler) handleRestartAllPrompt(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Restart all", "pwrall:yes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "pwrall:no"),
		),
	)
	h.sendWithKeyboard(chatID, "Restart *every* server on the main panel?", keyboard)
}

func (h *BotHandler) handleUsers(chatID int64) {
	users, err := h.mainPanel.ListUsers(context.Background())
	if err != nil {
		h.sendError(chatID, "Listing users", err)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Panel accounts* (%d)\n", len(users))
	for _, u := range users {
		marker := ""
		if u.Admin {
			marker = " 👑"
		}
		fmt.Fprintf(&b, "• %s%s — %s\n", esc(u.Username), marker, esc(u.Email))
	}
	h.send(chatID, b.String())
}

// ---------- scrape / distribute ----------

func (h *BotHandler) scraperFor(external bool) (Scraper, Panel) {
	if external {
		return h.extScrape, h.extPanel
	}
	return h.mainScrape, h.mainPanel
}

func (h *BotHandler) handleScrape(chatID int64, external bool) {
	scraper, panel := h.scraperFor(external)
	if scraper == nil {
		h.send(chatID, "⚙️ The external panel is not configured.")
		return
	}
	if h.blacklist.Contains(panel.Host()) {
		h.send(chatID, fmt.Sprintf("🚫 Panel `%s` is blacklisted.", esc(panel.Host())))
		return
	}

	h.send(chatID, fmt.Sprintf("🔍 Scraping credentials from `%s`, this can take a while...", esc(panel.Host())))

	results, counters, err := scraper.ScrapeAll(context.Background())
	if err != nil {
		h.sendError(chatID, "Scrape", err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Scrape finished* — `%s`\n", esc(panel.Host()))
	fmt.Fprintf(&b, "Scraped: %d  Skipped: %d  Errors: %d\n", counters.Scraped, counters.Skipped, counters.Errored)
	for i, r := range results {
		if i >= 25 {
			fmt.Fprintf(&b, "… and %d more\n", len(results)-i)
			break
		}
		fmt.Fprintf(&b, "• %s (%d bytes, found at `%s`)\n", esc(r.ServerName), r.ByteSize, esc(r.FoundPath))
	}

	if len(results) == 0 {
		h.send(chatID, b.String())
		return
	}

	h.sessions.SetLastScrape(chatID, &ScrapeBatch{
		PanelHost: panel.Host(),
		External:  external,
		Results:   results,
	})
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete remote copies", "scdel:yes"),
			tgbotapi.NewInlineKeyboardButtonData("Keep", "scdel:no"),
		),
	)
	h.sendWithKeyboard(chatID, b.String()+"\nDelete the remote copies on the source servers?", keyboard)
}

func (h *BotHandler) handleDistribute(chatID int64) {
	if h.extScrape == nil {
		h.send(chatID, "⚙️ The external panel is not configured.")
		return
	}
	if h.blacklist.Contains(h.extPanel.Host()) {
		h.send(chatID, fmt.Sprintf("🚫 Panel `%s` is blacklisted.", esc(h.extPanel.Host())))
		return
	}

	ctx := context.Background()
	h.send(chatID, fmt.Sprintf("📦 Collecting credentials from `%s`...", esc(h.extPanel.Host())))

	results, counters, err := h.extScrape.ScrapeAll(ctx)
	if err != nil {
		h.sendError(chatID, "Distribute", err)
		return
	}
	if len(results) == 0 {
		h.send(chatID, fmt.Sprintf("Nothing to distribute: scraped 0, skipped %d, errors %d.", counters.Skipped, counters.Errored))
		return
	}

	destinations, err := h.mainPanel.ListServers(ctx)
	if err != nil {
		h.sendError(chatID, "Distribute", err)
		return
	}

	payloads := make([]scrape.Payload, 0, len(results))
	for _, r := range results {
		payloads = append(payloads, scrape.Payload{Name: r.FileName, Content: r.Payload})
	}

	assignments := h.mainScrape.DistributeRoundRobin(ctx, payloads, destinations)

	assigned, skipped, failed := 0, 0, 0
	var b strings.Builder
	b.WriteString("*Distribution finished*\n")
	for _, a := range assignments {
		switch a.Status {
		case scrape.Assigned:
			assigned++
			fmt.Fprintf(&b, "• %s → %s\n", esc(a.PayloadName), esc(a.ServerName))
		case scrape.SkippedNoDestination:
			skipped++
		default:
			failed++
			fmt.Fprintf(&b, "• %s → %s ❌ %s\n", esc(a.PayloadName), esc(a.ServerName), esc(a.Err.Error()))
		}
	}
	fmt.Fprintf(&b, "\nAssigned: %d  Failed: %d  No destination: %d", assigned, failed, skipped)
	h.send(chatID, b.String())
}

// ---------- deposit flow ----------

func (h *BotHandler) handleDeposit(chatID int64) {
	servers, err := h.mainPanel.ListServers(context.Background())
	if err != nil {
		h.sendError(chatID, "Deposit", err)
		return
	}
	if len(servers) == 0 {
		h.send(chatID, "No destination servers available on the main panel.")
		return
	}

	if _, err := h.sessions.BeginUpload(chatID, servers); err != nil {
		h.send(chatID, "⚠️ Another flow is already active in this chat. Finish it with /done or /cancel first.")
		return
	}
	h.send(chatID, fmt.Sprintf(
		"📤 Deposit started. Send `.json` credential files as documents; each one goes to the next free server (%d available).\n"+
			"Finish with /done, abort with /cancel.", len(servers)))
}

func (h *BotHandler) handleDocument(chatID, userID int64, doc *tgbotapi.Document) {
	if !h.isOwner(userID) {
		return
	}
	if !h.sessions.UploadActive(chatID) {
		h.send(chatID, "Start a deposit with /deposit before sending files.")
		return
	}

	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".json") {
		h.send(chatID, fmt.Sprintf("❌ `%s` rejected: only .json files are accepted.", esc(doc.FileName)))
		return
	}

	content, err := h.downloadDocument(doc.FileID)
	if err != nil {
		h.sendError(chatID, "Download", err)
		return
	}

	cleaned, valid := scrape.CleanJSON(content)
	if !valid {
		h.send(chatID, fmt.Sprintf("❌ `%s` rejected: not valid JSON.", esc(doc.FileName)))
		return
	}

	// All deposit-flow mutations go through the store so documents arriving
	// together cannot pop the same destination.
	dest, ok := h.sessions.TakeNextDestination(chatID)
	if !ok {
		h.send(chatID, "⚠️ No free destination servers left in this session. Finish with /done.")
		return
	}

	ctx := context.Background()
	// Idempotent attempt; "already exists" from the panel is fine.
	_ = h.mainPanel.CreateFolder(ctx, dest.Identifier, "/", "session")
	if err := h.mainPanel.WriteFile(ctx, dest.Identifier, "/session", "creds.json", cleaned); err != nil {
		h.sessions.RestoreDestination(chatID, dest)
		h.sendError(chatID, "Upload", err)
		return
	}

	left := h.sessions.RecordUpload(chatID, UploadedFile{
		OriginalName:     doc.FileName,
		TargetServerName: dest.Name,
		TargetServerID:   dest.Identifier,
	})
	h.send(chatID, fmt.Sprintf("✅ `%s` → *%s* (%d servers left)", esc(doc.FileName), esc(dest.Name), left))
}

func (h *BotHandler) downloadDocument(fileID string) (string, error) {
	url, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file: %w", err)
	}
	res, err := h.downloader.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: status %d", res.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, maxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func (h *BotHandler) handleDone(chatID int64) {
	session := h.sessions.EndUpload(chatID)
	if session == nil {
		h.send(chatID, "No deposit in progress.")
		return
	}
	if len(session.Files) == 0 {
		h.send(chatID, "Deposit closed; nothing was uploaded.")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Deposit finished* — %d file(s) in %s\n", len(session.Files), time.Since(session.StartTime).Round(time.Second))
	for _, f := range session.Files {
		fmt.Fprintf(&b, "• %s → %s\n", esc(f.OriginalName), esc(f.TargetServerName))
	}
	h.send(chatID, b.String())
}

func (h *BotHandler) handleCancel(chatID int64) {
	h.sessions.Delete(chatID)
	h.send(chatID, "All in-progress flows for this chat were cancelled.")
}

// ---------- blacklist ----------

func (h *BotHandler) handleBlacklist(chatID int64) {
	domains := h.blacklist.List()

	var b strings.Builder
	if len(domains) == 0 {
		b.WriteString("*Blacklist is empty.*\n")
	} else {
		fmt.Fprintf(&b, "*Blacklisted panel domains* (%d)\n", len(domains))
		for i, d := range domains {
			fmt.Fprintf(&b, "%d. `%s`\n", i+1, esc(d))
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add domain", "bl:add"),
		),
	}
	for i, d := range domains {
		if i >= 10 {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➖ Remove %s", d), fmt.Sprintf("bl:del:%d", i)),
		))
	}
	h.sendWithKeyboard(chatID, b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (h *BotHandler) handleBlacklistAddInput(chatID int64, text string) {
	domain := NormalizeDomain(text)
	if domain == "" {
		h.send(chatID, "❌ That does not look like a domain.")
		return
	}
	if err := h.blacklist.Add(domain); err != nil {
		h.send(chatID, fmt.Sprintf("❌ %s", esc(err.Error())))
		return
	}
	h.send(chatID, fmt.Sprintf("✅ `%s` added to the blacklist.", esc(domain)))
}

// ---------- history ----------

func (h *BotHandler) handleHistory(chatID int64) {
	runs, err := h.audit.RecentRuns(10)
	if err != nil {
		h.sendError(chatID, "History", err)
		return
	}
	if len(runs) == 0 {
		h.send(chatID, "No recorded runs yet.")
		return
	}
	var b strings.Builder
	b.WriteString("*Recent runs*\n")
	for _, run := range runs {
		status := "running"
		if run.FinishedAt != nil {
			status = fmt.Sprintf("%d scraped / %d skipped / %d errors", run.Scraped, run.Skipped, run.Errored)
		}
		fmt.Fprintf(&b, "• %s `%s` — %s (%s)\n",
			run.StartedAt.Format("2006-01-02 15:04"), esc(run.PanelHost), run.Kind, status)
	}
	h.send(chatID, b.String())
}

// ---------- callbacks ----------

// Callback data is a colon-delimited tag plus arguments; the separator cannot
// appear in identifiers or indexes, so splitting is unambiguous.
func (h *BotHandler) HandleCallbackQuery(update tgbotapi.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("WARNING: failed to ack callback: %v", err)
	}

	if !h.isOwner(cb.From.ID) {
		return
	}

	parts := strings.Split(cb.Data, ":")
	switch parts[0] {
	case "scdel":
		h.handleScrapeDeleteCallback(chatID, len(parts) > 1 && parts[1] == "yes")
	case "pwrall":
		h.handleRestartAllCallback(chatID, len(parts) > 1 && parts[1] == "yes")
	case "bl":
		h.handleBlacklistCallback(chatID, parts[1:])
	}
}

func (h *BotHandler) handleScrapeDeleteCallback(chatID int64, confirmed bool) {
	batch := h.sessions.TakeLastScrape(chatID)
	if batch == nil {
		h.send(chatID, "No scrape result is pending confirmation.")
		return
	}
	if !confirmed {
		h.send(chatID, "Remote copies kept.")
		return
	}

	scraper, _ := h.scraperFor(batch.External)
	if scraper == nil {
		h.send(chatID, "⚙️ The source panel is no longer configured.")
		return
	}

	ctx := context.Background()
	deleted, failed := 0, 0
	var failures []string
	for _, r := range batch.Results {
		if err := scraper.DeleteRemoteAfterScrape(ctx, r.ServerUUID); err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("• %s: %s", esc(r.ServerName), esc(err.Error())))
			continue
		}
		deleted++
	}

	report := fmt.Sprintf("🗑 Remote cleanup on `%s`: %d deleted, %d failed.", esc(batch.PanelHost), deleted, failed)
	if len(failures) > 0 {
		report += "\n" + strings.Join(failures, "\n")
	}
	h.send(chatID, report)
}

func (h *BotHandler) handleRestartAllCallback(chatID int64, confirmed bool) {
	if !confirmed {
		h.send(chatID, "Restart cancelled.")
		return
	}
	ctx := context.Background()
	servers, err := h.mainPanel.ListServers(ctx)
	if err != nil {
		h.sendError(chatID, "Restart", err)
		return
	}
	ok, failed := 0, 0
	for _, s := range servers {
		if err := h.mainPanel.PowerAction(ctx, s.Identifier, "restart"); err != nil {
			failed++
			log.Printf("WARNING: restart failed for %s: %v", s.Name, err)
			continue
		}
		ok++
	}
	h.send(chatID, fmt.Sprintf("🔄 Restart issued to %d server(s), %d failed.", ok, failed))
}

func (h *BotHandler) handleBlacklistCallback(chatID int64, args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "add":
		if err := h.sessions.BeginPendingInput(chatID, pendingBlacklistAdd); err != nil {
			h.send(chatID, "⚠️ Another flow is already active in this chat.")
			return
		}
		h.send(chatID, "Send the panel domain to blacklist (e.g. `panel.example.com`).")
	case "del":
		if len(args) < 2 {
			return
		}
		index := 0
		if _, err := fmt.Sscanf(args[1], "%d", &index); err != nil {
			return
		}
		removed, err := h.blacklist.Remove(index)
		if err != nil {
			h.send(chatID, fmt.Sprintf("❌ %s", esc(err.Error())))
			return
		}
		h.send(chatID, fmt.Sprintf("✅ `%s` removed from the blacklist.", esc(removed)))
	}
}
