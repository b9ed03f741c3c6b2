// Package browser drives a Chrome tab over the DevTools protocol and exposes
// it as a dom.Page.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/goapply/goapply/internal/dom"
	"github.com/goapply/goapply/internal/log"
)

// Config configures how Chrome is started or reached.
type Config struct {
	Headless bool `yaml:"headless" env:"GOAPPLY_HEADLESS" env-default:"false"`
	// UserAgent overrides the browser's default when set.
	UserAgent string `yaml:"user_agent" env:"GOAPPLY_USER_AGENT"`
	// UserDataDir points at a Chrome profile, which keeps the platform
	// logins between runs.
	UserDataDir string `yaml:"user_data_dir" env:"GOAPPLY_USER_DATA_DIR"`
	// RemoteURL attaches to an already running Chrome started with
	// --remote-debugging-port instead of launching one.
	RemoteURL    string        `yaml:"remote_url" env:"GOAPPLY_REMOTE_URL"`
	ExecPath     string        `yaml:"exec_path" env:"GOAPPLY_CHROME_PATH"`
	WindowWidth  int           `yaml:"window_width" env-default:"1920"`
	WindowHeight int           `yaml:"window_height" env-default:"1080"`
	PageLoadWait time.Duration `yaml:"page_load_wait" env-default:"2s"`
}

func (c Config) withDefaults() Config {
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		// desktop layout; some platforms hide the apply buttons on mobile
		c.WindowWidth, c.WindowHeight = 1920, 1080
	}
	if c.PageLoadWait < 0 {
		c.PageLoadWait = 0
	}
	return c
}

func (c Config) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(c.WindowWidth, c.WindowHeight),
		chromedp.Flag("headless", c.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}
	if c.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(c.UserDataDir))
	}
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	return opts
}

// Browser owns the Chrome allocator. Every page is a new tab.
type Browser struct {
	cfg          Config
	allocContext context.Context
	cancelAlloc  context.CancelFunc
}

func New(cfg Config) *Browser {
	cfg = cfg.withDefaults()
	var allocContext context.Context
	var cancelAlloc context.CancelFunc
	if cfg.RemoteURL != "" {
		allocContext, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		allocContext, cancelAlloc = chromedp.NewExecAllocator(context.Background(), cfg.allocatorOptions()...)
	}
	return &Browser{
		cfg:          cfg,
		allocContext: allocContext,
		cancelAlloc:  cancelAlloc,
	}
}

// Close shuts the browser down, or detaches from a remote one.
func (b *Browser) Close() {
	b.cancelAlloc()
}

// Page opens a tab. The returned function closes it.
func (b *Browser) Page(ctx context.Context) (dom.Page, func(), error) {
	logger := log.LoggerFromContext(ctx).With(slog.String("component", "browser"))
	tab, cancel := chromedp.NewContext(b.allocContext)

	actions := []chromedp.Action{}
	// log chrome version in debug mode
	if log.Debug {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			protocolVersion, product, revision, userAgent, jsVersion, err := cdpbrowser.GetVersion().Do(ctx)
			if err != nil {
				logger.Warn("failed to get chrome version", slog.String("err", err.Error()))
				return nil
			}
			logger.Debug(fmt.Sprintf("chrome version: protocolVersion=%s, product=%s, revision=%s, userAgent=%s, jsVersion=%s",
				protocolVersion, product, revision, userAgent, jsVersion))
			return nil
		}))
	}
	// the first Run starts the browser and attaches the tab
	if err := chromedp.Run(tab, actions...); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("starting chrome: %w", err)
	}
	logger.Debug("opened tab", slog.Bool("headless", b.cfg.Headless), slog.String("remote", b.cfg.RemoteURL))
	return &Page{tab: tab, loadWait: b.cfg.PageLoadWait}, cancel, nil
}
