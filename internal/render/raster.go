// Package render turns compiled HTML into a raster image for human preview
// and automated visual critique.
package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/draftdeck/draftdeck/internal/config"
	"github.com/draftdeck/draftdeck/internal/debug"
	"github.com/draftdeck/draftdeck/internal/email"
	"github.com/draftdeck/draftdeck/internal/logger"
	"github.com/draftdeck/draftdeck/internal/mjml"
)

// emailRootSelector marks the email's visual boundary when the compiled HTML
// wraps it in extra chrome; capture crops to it when present.
const emailRootSelector = "#email"

// elementCaptureTimeout bounds the wait for the root element before falling
// back to a full-page capture.
const elementCaptureTimeout = 5 * time.Second

// RenderError reports a raster pipeline failure together with the stage that
// produced it. Any stage failing is fatal to the call: a misleading
// screenshot is worse than an explicit failure.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &RenderError{Stage: stage, Err: err}
}

// Raster is a captured screenshot in both raw and base64 form; the latter is
// what gets embedded in a vision-model request.
type Raster struct {
	Bytes  []byte
	Base64 string
}

// Renderer drives a headless browser over compiled email HTML.
type Renderer struct {
	mjml *mjml.Client
	cfg  config.RenderConfig
}

// NewRenderer builds a renderer backed by the given MJML client.
func NewRenderer(client *mjml.Client, cfg config.RenderConfig) *Renderer {
	return &Renderer{mjml: client, cfg: cfg}
}

// RenderMarkup compiles an MJML document and captures it as a PNG.
func (r *Renderer) RenderMarkup(ctx context.Context, markup string) (Raster, error) {
	if err := email.ValidateMarkup(markup); err != nil {
		return Raster{}, stageErr("validate", err)
	}
	result, err := r.mjml.Compile(ctx, markup)
	if err != nil {
		return Raster{}, stageErr("compile", err)
	}
	return r.RenderHTML(ctx, result.HTML)
}

// RenderHTML loads HTML into an isolated headless browser sized to the fixed
// viewport and captures either the designated email root element or the full
// scrollable page.
func (r *Renderer) RenderHTML(ctx context.Context, html string) (Raster, error) {
	html = injectBaseHref(html, r.cfg.BaseOrigin)
	debug.Dump("email.html", []byte(html))

	// A fresh profile per capture keeps runs isolated from each other.
	tmpDir, err := os.MkdirTemp("", "draftdeck-rod-*")
	if err != nil {
		return Raster{}, stageErr("launch", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.Warn("[Render] failed to remove temp profile dir: %v", err)
		}
	}()

	docPath := filepath.Join(tmpDir, "email.html")
	if err := os.WriteFile(docPath, []byte(html), 0644); err != nil {
		return Raster{}, stageErr("launch", err)
	}

	u, err := launcher.New().
		Headless(true).
		NoSandbox(true).
		UserDataDir(tmpDir).
		Launch()
	if err != nil {
		return Raster{}, stageErr("launch", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return Raster{}, stageErr("connect", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return Raster{}, stageErr("page", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return Raster{}, stageErr("viewport", err)
	}

	if err := page.Navigate("file://" + docPath); err != nil {
		return Raster{}, stageErr("navigate", err)
	}

	// Settle before capturing: resource loading first, then fonts, then a
	// visible body. Skipping any of these is how blank or half-painted
	// frames happen.
	if err := page.WaitLoad(); err != nil {
		return Raster{}, stageErr("wait-load", err)
	}
	if err := page.WaitIdle(30 * time.Second); err != nil {
		return Raster{}, stageErr("wait-idle", err)
	}
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return Raster{}, stageErr("fonts", err)
	}
	body, err := page.Timeout(10 * time.Second).Element("body")
	if err != nil {
		return Raster{}, stageErr("body", err)
	}
	if err := body.WaitVisible(); err != nil {
		return Raster{}, stageErr("body", err)
	}

	bin, err := r.capture(page)
	if err != nil {
		return Raster{}, stageErr("capture", err)
	}
	debug.Dump("capture.png", bin)

	return Raster{
		Bytes:  bin,
		Base64: base64.StdEncoding.EncodeToString(bin),
	}, nil
}

// capture screenshots the email root element when present, falling back to
// the full scrollable page when the element is absent or slow to appear.
func (r *Renderer) capture(page *rod.Page) ([]byte, error) {
	el, err := page.Timeout(elementCaptureTimeout).Element(emailRootSelector)
	if err == nil {
		bin, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		if err == nil {
			return bin, nil
		}
		logger.Warn("[Render] element capture failed, falling back to full page: %v", err)
	}
	return page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}
