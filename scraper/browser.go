package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/filmreview/config"
	"github.com/use-agent/filmreview/engine"
)

var _ engine.Launcher = (*Browser)(nil)

// launchFlags keep Chromium lean when several instances share a container.
var launchFlags = []string{
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-accelerated-2d-canvas",
	"no-first-run",
	"no-zygote",
	"disable-gpu",
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
}

// Browser launches Chromium processes for the instance pool.
type Browser struct {
	cfg    config.BrowserConfig
	client *http.Client
}

// NewBrowser returns a launcher for cfg. client loads intercepted document
// bodies; it should carry the Chrome TLS fingerprint.
func NewBrowser(cfg config.BrowserConfig, client *http.Client) *Browser {
	return &Browser{cfg: cfg, client: client}
}

// Launch starts one Chromium process and connects to it.
func (b *Browser) Launch(ctx context.Context) (engine.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().
		Headless(b.cfg.Headless).
		NoSandbox(b.cfg.NoSandbox).
		Leakless(true)

	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}
	if b.cfg.Proxy != "" {
		l = l.Proxy(b.cfg.Proxy)
	}
	for _, f := range launchFlags {
		l.Set(flags.Flag(f))
	}
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", b.cfg.WindowWidth, b.cfg.WindowHeight))
	l.Set(flags.Flag("lang"), "it-IT")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL, "pid", l.PID())

	return &browserInstance{
		browser:  browser,
		launcher: l,
		cfg:      b.cfg,
		client:   b.client,
	}, nil
}

type browserInstance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.BrowserConfig
	client   *http.Client
}

// NewPage opens a tab with the fixed viewport, Italian locale headers and,
// when enabled, the stealth script.
func (i *browserInstance) NewPage(ctx context.Context) (engine.Page, error) {
	page, err := i.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	if i.cfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             i.cfg.WindowWidth,
		Height:            i.cfg.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Debug("set viewport failed", "error", err)
	}

	headers := proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "it-IT,it;q=0.9,en;q=0.8",
		}),
	}
	if err := headers.Call(page); err != nil {
		slog.Debug("set extra headers failed", "error", err)
	}

	return newRodPage(page, i.client, i.cfg.BlockedResourceTypes), nil
}

// Close disconnects and kills the Chromium process.
func (i *browserInstance) Close() error {
	err := i.browser.Close()
	i.launcher.Kill()
	return err
}
