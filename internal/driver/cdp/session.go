// Package cdp implements the driver interfaces over the Chrome DevTools
// Protocol via chromedp. A Session owns the allocator and browser context;
// its Driver resolves locators to DOM node handles and dispatches input.
package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Options configures the browser process a Session launches.
type Options struct {
	Headless   bool
	NoSandbox  bool
	UserAgent  string
	ChromePath string
	// Flags are extra chrome switches, passed through verbatim.
	Flags map[string]string
	// StartupTimeout bounds the initial browser launch.
	StartupTimeout time.Duration

	Log *zap.Logger
}

// Session owns a browser process and one automation tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	log         *zap.Logger
}

// NewSession launches the browser and establishes the automation target.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	for key, value := range opts.Flags {
		if value == "" {
			allocOpts = append(allocOpts, chromedp.Flag(key, true))
			continue
		}
		allocOpts = append(allocOpts, chromedp.Flag(key, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(log.Sugar().Errorf),
	)

	startup := opts.StartupTimeout
	if startup <= 0 {
		startup = 30 * time.Second
	}
	startCtx, startCancel := context.WithTimeout(ctx, startup)
	defer startCancel()
	// An empty task list forces the browser to actually launch.
	if err := chromedp.Run(startCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	log.Debug("Browser session established")
	return &Session{ctx: ctx, cancel: cancel, allocCancel: allocCancel, log: log}, nil
}

// Navigate loads a URL and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.log.Info("Navigating", zap.String("url", url))
	d := s.Driver()
	return d.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Driver returns the element driver bound to this session's tab.
func (s *Session) Driver() *Driver {
	return &Driver{session: s.ctx, log: s.log}
}

// Close shuts the browser down, waiting for the process to exit.
func (s *Session) Close() error {
	defer s.allocCancel()
	defer s.cancel()
	if err := chromedp.Cancel(s.ctx); err != nil {
		s.log.Warn("Browser did not shut down cleanly", zap.Error(err))
		return err
	}
	s.log.Debug("Browser session closed")
	return nil
}
