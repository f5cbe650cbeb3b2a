package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/config"
	"github.com/five82/bookshelf/internal/prefs"
	"github.com/five82/bookshelf/internal/shelf"
	"github.com/five82/bookshelf/internal/telemetry"
	"github.com/five82/bookshelf/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// Options configure the Bookshelf application.
type Options struct {
	ConfigPath string // empty uses default ~/.config/bookshelf/config.toml
	APIURL     string // overrides api_url when set
	PrefsPath  string // empty uses default ~/.config/bookshelf/prefs.toml
}

// Run boots the Bookshelf TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	client, err := catalog.NewClient(cfg.APIURL, catalog.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("init catalog client: %w", err)
	}

	controller := shelf.New(client)
	defer controller.Close()

	userPrefs := prefs.Load(opts.PrefsPath)
	log.Printf("bookshelf: starting against %s", client.BaseURL())

	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: controller,
		APIURL:     client.BaseURL(),
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
	})
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if api := strings.TrimSpace(opts.APIURL); api != "" {
		cfg.APIURL = api
	}
	return cfg, nil
}

// openLog sends the standard logger to path, since the terminal belongs to
// the UI. An empty path discards log output.
func openLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
