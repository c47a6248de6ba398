// ABOUTME: Entry point for the command cleaner Discord bot
// ABOUTME: Subcommands: serve (run the bot) and init (write a starter config)

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/admincmd"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/bot"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/config"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/discord"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/reconcile"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/routing"
	"github.com/mertcansegmen/command-cleaner-discord-bot/internal/store"
)

// Version is set at build time.
var version = "dev"

const banner = `
                                              _
  ___ ___  _ __ ___  _ __ ___   __ _ _ __   __| |
 / __/ _ \| '_ ' _ \| '_ ' _ \ / _' | '_ \ / _' |
| (_| (_) | | | | | | | | | | | (_| | | | | (_| |
 \___\___/|_| |_| |_|_| |_| |_|\__,_|_| |_|\__,_|
           ___| | ___  __ _ _ __   ___ _ __
          / __| |/ _ \/ _' | '_ \ / _ \ '__|
         | (__| |  __/ (_| | | | |  __/ |
          \___|_|\___|\__,_|_| |_|\___|_|
`

// getConfigPath returns the path to the bot's config file.
// Priority: CLEANER_CONFIG env var > XDG_CONFIG_HOME/command-cleaner/config.yaml
// > ~/.config/command-cleaner/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CLEANER_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "command-cleaner", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: command-cleaner <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve   Start the bot")
		fmt.Println("  init    Create a starter config file")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	if cfg.Server.HTTPAddr != "" {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	}
	fmt.Println()

	kv, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()

	rules, err := routing.NewStore(ctx, kv, logger)
	if err != nil {
		return fmt.Errorf("creating routing store: %w", err)
	}

	adapter, err := discord.New(cfg.Discord.Token, logger)
	if err != nil {
		return fmt.Errorf("creating discord adapter: %w", err)
	}
	if err := adapter.Open(); err != nil {
		return fmt.Errorf("connecting to discord: %w", err)
	}
	defer adapter.Close()

	engine := reconcile.New(reconcile.Config{
		Adapter:      adapter,
		Rules:        rules,
		Logger:       logger,
		SelfID:       adapter.SelfID(),
		GracePeriod:  cfg.Bot.GracePeriod,
		RecentWindow: cfg.Bot.RecentWindow,
	})
	defer engine.Close()

	admin := admincmd.NewProcessor(rules, cfg.Bot.AdminMarker, logger)

	b := bot.New(bot.Config{
		Adapter: adapter,
		Rules:   rules,
		Admin:   admin,
		Engine:  engine,
		Logger:  logger,
		SelfID:  adapter.SelfID(),
		Marker:  cfg.Bot.AdminMarker,
	})

	adapter.Bind(ctx, discord.Handlers{
		Message:   b.HandleMessage,
		GuildJoin: b.HandleGuildJoin,
		Slash:     b.HandleSlashCommand,
	})

	if cfg.Server.HTTPAddr != "" {
		go serveHealth(ctx, cfg.Server.HTTPAddr, logger)
	}

	logger.Info("command cleaner running",
		"config", configPath,
		"admin_marker", cfg.Bot.AdminMarker,
	)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// serveHealth runs the optional liveness endpoint used by hosting platforms
// that expect an HTTP port.
func serveHealth(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("health endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("health endpoint failed", "error", err)
	}
}

const starterConfig = `discord:
  token: ${DISCORD_TOKEN}

bot:
  admin_marker: ",,"
  grace_period: 20s
  recent_window: 50

database:
  path: data/cleaner.db

# server:
#   http_addr: ":8080"

logging:
  level: info
  format: text
`

func runInit() error {
	path := getConfigPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Wrote starter config to %s\n", path)
	fmt.Println("Set DISCORD_TOKEN in the environment (or edit the file), then run: command-cleaner serve")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(&colorHandler{level: level})
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu    sync.Mutex
	level slog.Level
	attrs []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{level: h.level, attrs: newAttrs}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return h
}
