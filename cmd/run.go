package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/widgetry/internal/config"
	"github.com/xkilldash9x/widgetry/internal/driver/cdp"
	"github.com/xkilldash9x/widgetry/internal/observability"
	"github.com/xkilldash9x/widgetry/internal/page"
	"github.com/xkilldash9x/widgetry/internal/widget"
)

// step is one scripted widget interaction.
type step struct {
	Page   string   `yaml:"page"`
	Widget string   `yaml:"widget"`
	Action string   `yaml:"action"`
	Value  string   `yaml:"value"`
	Values []string `yaml:"values"`
}

// script is a sequential interaction scenario against one URL.
type script struct {
	URL   string `yaml:"url"`
	Steps []step `yaml:"steps"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding script %q: %w", path, err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("script %q names no url", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script %q has no steps", path)
	}
	return &s, nil
}

// newRunCmd creates the `run` command: load page definitions and a step
// script, open a browser session, and execute the steps in order.
func newRunCmd() *cobra.Command {
	var pagesFile string

	runCmd := &cobra.Command{
		Use:   "run [script.yaml]",
		Short: "Executes a scripted interaction scenario against a live page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			defs, err := page.ParseFile(pagesFile)
			if err != nil {
				return err
			}
			book, err := page.Build(defs)
			if err != nil {
				return err
			}
			scr, err := loadScript(args[0])
			if err != nil {
				return err
			}

			session, err := cdp.NewSession(ctx, cdp.Options{
				Headless:       cfg.Browser.Headless,
				NoSandbox:      cfg.Browser.NoSandbox,
				UserAgent:      cfg.Browser.UserAgent,
				ChromePath:     cfg.Browser.ChromePath,
				Flags:          cfg.Browser.Flags,
				StartupTimeout: cfg.Browser.StartupTimeout,
				Log:            logger.Named("browser"),
			})
			if err != nil {
				return err
			}
			defer session.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				navCtx, cancel := context.WithTimeout(gctx, cfg.Browser.NavigationTimeout)
				defer cancel()
				if err := session.Navigate(navCtx, scr.URL); err != nil {
					return fmt.Errorf("navigating to %q: %w", scr.URL, err)
				}
				return executeSteps(gctx, scr, book, session, cfg, logger)
			})
			return g.Wait()
		},
	}

	runCmd.Flags().StringVar(&pagesFile, "pages", "pages.yaml", "page definitions file")
	return runCmd
}

func executeSteps(ctx context.Context, scr *script, book *page.Book, session *cdp.Session, cfg *config.Config, logger *zap.Logger) error {
	drv := session.Driver()
	opened := map[string]*page.Page{}
	openPage := func(name string) (*page.Page, error) {
		if p, ok := opened[name]; ok {
			return p, nil
		}
		p, err := book.Open(name, drv, page.BindOptions{
			Timeout:    cfg.Widgets.Timeout,
			Interval:   cfg.Widgets.PollInterval,
			RetryDelay: cfg.Widgets.RetryDelay,
			Log:        logger,
		})
		if err != nil {
			return nil, err
		}
		opened[name] = p
		return p, nil
	}

	for i, st := range scr.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := openPage(st.Page)
		if err != nil {
			return err
		}
		log := logger.With(
			zap.Int("step", i+1),
			zap.String("page", st.Page),
			zap.String("widget", st.Widget),
			zap.String("action", st.Action),
		)
		log.Info("Executing step")
		if err := executeStep(ctx, p, st); err != nil {
			log.Error("Step failed", zap.Error(err))
			return fmt.Errorf("step %d (%s.%s %s): %w", i+1, st.Page, st.Widget, st.Action, err)
		}
	}
	logger.Info("Script finished", zap.Int("steps", len(scr.Steps)))
	return nil
}

func executeStep(ctx context.Context, p *page.Page, st step) error {
	switch st.Action {
	case "click":
		return p.Click(ctx, st.Widget)
	case "set":
		if len(st.Values) > 0 {
			w, err := p.Widget(st.Widget)
			if err != nil {
				return err
			}
			multi, ok := w.(widget.MultiWriter)
			if !ok {
				return fmt.Errorf("widget %q (%s) does not accept multiple values", st.Widget, w.Kind())
			}
			return multi.Set(ctx, p.Binding(), st.Values...)
		}
		return p.SetString(ctx, st.Widget, st.Value)
	case "check":
		return p.SetBool(ctx, st.Widget, true)
	case "uncheck":
		return p.SetBool(ctx, st.Widget, false)
	case "get":
		value, err := p.GetString(ctx, st.Widget)
		if err != nil {
			return err
		}
		observability.GetLogger().Info("Widget value",
			zap.String("page", st.Page), zap.String("widget", st.Widget), zap.String("value", value))
		return nil
	default:
		return fmt.Errorf("unknown action %q (want click, set, check, uncheck, or get)", st.Action)
	}
}
