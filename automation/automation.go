package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DashboardURL turns a listen address into a URL a local browser can open.
func DashboardURL(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		addr = "localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return "http://" + addr + "/"
}

// OpenBrowser opens url in the system's default browser.
func OpenBrowser(url string) {
	launcher.Open(url)
}

// CaptureDashboard loads url in a headless browser and writes a full-page PNG
// screenshot to outPath.
func CaptureDashboard(ctx context.Context, url, outPath string, timeout time.Duration) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output folder: %w", err)
		}
	}

	// Leakless(false) so antivirus software does not block the helper binary
	l := launcher.New().
		Headless(true).
		Leakless(false)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Kill()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("dashboard did not finish loading: %w", err)
	}

	img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("failed to capture dashboard: %w", err)
	}
	if err := os.WriteFile(outPath, img, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}
