package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/el-pablos/TelegramME-sub000/internal"
	"github.com/el-pablos/TelegramME-sub000/internal/database"
	"github.com/el-pablos/TelegramME-sub000/internal/ptero"
	"github.com/el-pablos/TelegramME-sub000/internal/scrape"
)

const workerPoolSize = 10

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file (default: ./config.yaml)")
	flag.Parse()

	if configPath != "" {
		os.Setenv("CONFIG_FILE_PATH", configPath)
	}

	config, err := internal.GetConfig()
	if err != nil {
		log.Fatalf("Failed to get configuration: %v", err)
	}

	dbManager, err := database.NewDBManager(config.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to create database manager: %v", err)
	}
	defer dbManager.Close()

	auditRepo := database.NewAuditRepository(dbManager.GetDB())

	blacklist, err := internal.NewFileBlacklist(config.BlacklistPath)
	if err != nil {
		log.Fatalf("Failed to load blacklist: %v", err)
	}

	invoker := ptero.NewInvoker(config.RequestTimeout)
	mainPanel := ptero.NewClient(config.MainPanel.URL, config.MainPanel.ApplicationKey, config.MainPanel.ClientKey, invoker)
	mainScrape := scrape.NewDistributor(mainPanel, config.OutputDirSender, config.ServerDelay, auditRepo)

	var extPanel *ptero.Client
	var extScrape *scrape.Distributor
	if config.ExternalPanel.Configured() {
		extPanel = ptero.NewClient(config.ExternalPanel.URL, config.ExternalPanel.ApplicationKey, config.ExternalPanel.ClientKey, invoker)
		extScrape = scrape.NewDistributor(extPanel, config.OutputDirExternal, config.ServerDelay, auditRepo)
	} else {
		log.Println("External panel is not configured; /scrapeext and /distribute are disabled")
	}

	bot, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}
	log.Printf("Authorized as @%s", bot.Self.UserName)

	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Show help"},
		tgbotapi.BotCommand{Command: "servers", Description: "List servers on the main panel"},
		tgbotapi.BotCommand{Command: "status", Description: "Live usage of one server"},
		tgbotapi.BotCommand{Command: "power", Description: "Send a power signal to a server"},
		tgbotapi.BotCommand{Command: "restartall", Description: "Restart every server"},
		tgbotapi.BotCommand{Command: "users", Description: "List panel accounts"},
		tgbotapi.BotCommand{Command: "scrape", Description: "Collect credentials from the main panel"},
		tgbotapi.BotCommand{Command: "scrapeext", Description: "Collect credentials from the external panel"},
		tgbotapi.BotCommand{Command: "distribute", Description: "Move external credentials onto main servers"},
		tgbotapi.BotCommand{Command: "deposit", Description: "Upload credential files by hand"},
		tgbotapi.BotCommand{Command: "blacklist", Description: "Manage blocked panel domains"},
		tgbotapi.BotCommand{Command: "history", Description: "Recent scrape runs"},
	)
	if _, err := bot.Request(commands); err != nil {
		log.Fatalf("Failed to set bot commands: %v", err)
	}

	var healthServer *internal.HealthServer
	if config.HealthServerEnabled {
		panelCheck := func() error {
			_, err := mainPanel.ListServers(context.Background())
			return err
		}
		healthServer = internal.NewHealthServer(dbManager.GetDB(), panelCheck, config.HealthServerPort)
		if err := healthServer.Start(); err != nil {
			log.Printf("WARNING: Failed to start health server: %v", err)
		}
		defer healthServer.Stop()
	}

	botAdapter := &internal.BotAPIAdapter{BotAPI: bot}

	// The Panel/Scraper interface values must stay nil when the external panel
	// is absent; a typed nil pointer would not compare equal to nil.
	var extPanelIface internal.Panel
	var extScrapeIface internal.Scraper
	if extPanel != nil {
		extPanelIface = extPanel
		extScrapeIface = extScrape
	}

	handler := internal.NewBotHandler(botAdapter, config, mainPanel, extPanelIface, mainScrape, extScrapeIface, auditRepo, blacklist)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sem := make(chan struct{}, workerPoolSize)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cleaning up...")
		cancel()
		bot.StopReceivingUpdates()
	}()

	log.Println("Bot is running...")

	for {
		select {
		case update := <-updates:
			sem <- struct{}{}
			go func(update tgbotapi.Update) {
				defer func() { <-sem }()

				if update.Message != nil {
					handler.HandleMessage(update)
				} else if update.CallbackQuery != nil {
					handler.HandleCallbackQuery(update)
				}
			}(update)

		case <-ctx.Done():
			log.Println("Bot stopped")
			return
		}
	}
}
