package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/cmd/bot/config"
	"github.com/fenris-bot/fenris/cmd/bot/monitoring"
	"github.com/fenris-bot/fenris/pkg/dataaccess"
	"github.com/fenris-bot/fenris/pkg/logging"
	"github.com/fenris-bot/fenris/pkg/request"
	"github.com/fenris-bot/fenris/pkg/ticketing"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// platformTimeout bounds every REST call to the Discord API. Calls that take
// longer surface as platform errors instead of hanging an interaction.
const platformTimeout = 15 * time.Second

// IApp is the interface for the application.
type IApp interface {
	// Log returns the application logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// GuildDal returns the per-guild configuration store.
	GuildDal() dataaccess.GuildDal

	// Engine returns the ticket lifecycle engine.
	Engine() *ticketing.Engine

	// Panel returns the ticket panel controller.
	Panel() *ticketing.Panel
}

type App struct {
	// is the logger.
	*slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// dal is the per-guild configuration store.
	dal dataaccess.GuildDal

	// engine is the ticket lifecycle engine.
	engine *ticketing.Engine

	// panel is the ticket panel controller.
	panel *ticketing.Panel

	// limiter throttles dashboard API writes.
	limiter *rate.Limiter
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		Logger:  l,
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsAll
	dg.Client = &http.Client{Timeout: platformTimeout}

	a.s = dg

	// Wire the ticketing core around the session.
	platform := ticketing.NewSessionPlatform(dg)
	a.dal = dataaccess.NewGuildDal(a.Logger)
	archiver := ticketing.NewArchiver(a.Logger, platform, config.TranscriptDir)
	a.engine = ticketing.NewEngine(a.Logger, a.dal, platform, archiver)
	a.panel = ticketing.NewPanel(a.Logger, a.dal, platform)
	return nil
}

func (a *App) runServer() {
	go func() {
		a.Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// The dashboard's configuration API.
	a.registerDashboardRoutes()

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(200, "", "", false)
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Count every raw gateway event.
	a.s.AddHandler(func(_ *discordgo.Session, e *discordgo.Event) {
		if e.Type != "" {
			monitoring.TotalDiscordEvents.WithLabelValues(e.Type).Inc()
		}
	})

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandProcessor{
			setupCmd.Name:         setupCmdProcessor,
			setLogChannelCmd.Name: setLogChannelCmdProcessor,
			addAdminRoleCmd.Name:  addAdminRoleCmdProcessor,
		}))
	return nil
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		for _, cmd := range slashCommands {
			if _, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, cmd); err != nil {
				return fmt.Errorf("error creating %s command for guild %s: %w", cmd.Name, g.ID, err)
			}
		}
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Delete slash commands for each guild.
	for _, guild := range guilds {
		registered, err := a.s.ApplicationCommands(config.ApplicationId, guild.ID)
		if err != nil {
			return fmt.Errorf("error listing commands for guild %s: %w", guild.ID, err)
		}
		for _, cmd := range registered {
			if err := a.s.ApplicationCommandDelete(config.ApplicationId, guild.ID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting %s command for guild %s: %w", cmd.Name, guild.ID, err)
			}
		}
	}
	return nil
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) GuildDal() dataaccess.GuildDal {
	return a.dal
}

func (a *App) Engine() *ticketing.Engine {
	return a.engine
}

func (a *App) Panel() *ticketing.Panel {
	return a.panel
}
