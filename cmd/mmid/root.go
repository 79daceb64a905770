package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polzovatel/mmid-page-model/internal/browser"
	"github.com/polzovatel/mmid-page-model/internal/config"
	"github.com/polzovatel/mmid-page-model/internal/output"
	"github.com/polzovatel/mmid-page-model/internal/pagemodel"
	"github.com/polzovatel/mmid-page-model/internal/session"
	"github.com/polzovatel/mmid-page-model/internal/snapshot"
)

// app is the state shared by all subcommands, filled in before any of them
// runs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	format output.Format
	svc    *pagemodel.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "mmid",
		Short:         "Tag, read and clean interactive elements of web pages",
		Long:          "mmid assigns numeric identifiers to the interactive elements of a page and reports them as a pruned tree or a table of form fields.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("format", "json", "Output format: json, yaml")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := root.PersistentFlags().GetString("format")
		return a.init(format)
	}
	root.AddCommand(
		newInjectCmd(a),
		newTreeCmd(a),
		newFieldsCmd(a),
		newCleanupCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init(format string) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	a.format = f
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log.Logger.Level(cfg.LogLevel)
	sessions, err := session.NewManager(cfg.SessionCache, cfg.SessionOptions(), a.logger.With().Str("comp", "session").Logger())
	if err != nil {
		return err
	}
	a.svc = pagemodel.NewService(sessions, a.logger.With().Str("comp", "pagemodel").Logger())
	return nil
}

// pageFlags selects the page a one-shot command works on.
type pageFlags struct {
	url  string
	file string
	out  string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.url, "url", "", "Open this URL in a browser")
	cmd.Flags().StringVar(&p.file, "file", "", "Read a static HTML file")
}

func (p *pageFlags) registerOut(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.out, "out", "", "Write the resulting HTML here (--file only)")
}

// openedPage is a page plus whatever must be released after use.
type openedPage struct {
	page  pagemodel.Page
	html  *pagemodel.HTMLPage
	close func()
}

func (a *app) open(ctx context.Context, p pageFlags) (*openedPage, error) {
	url := strings.TrimSpace(p.url)
	file := strings.TrimSpace(p.file)
	switch {
	case url != "" && file != "":
		return nil, errors.New("use either --url or --file")
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		hp, err := pagemodel.NewHTMLPage(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		return &openedPage{page: hp, html: hp, close: func() {}}, nil
	case url != "":
		if p.out != "" {
			return nil, errors.New("--out needs --file")
		}
		launcher, err := browser.NewLauncher(ctx, a.cfg.BrowserOptions(), a.logger.With().Str("comp", "browser").Logger())
		if err != nil {
			return nil, err
		}
		ctrl, err := launcher.NewController(ctx, "")
		if err != nil {
			_ = launcher.Close()
			return nil, err
		}
		release := func() {
			_ = ctrl.Close(context.Background())
			_ = launcher.Close()
		}
		if err := ctrl.Navigate(ctx, url); err != nil {
			release()
			return nil, err
		}
		if err := ctrl.WaitForStableDOM(ctx, 0); err != nil {
			a.logger.Warn().Err(err).Msg("page did not settle")
		}
		live := snapshot.NewLivePage(ctrl.Page(), a.logger.With().Str("comp", "snapshot").Logger())
		return &openedPage{page: live, close: release}, nil
	default:
		return nil, errors.New("one of --url or --file is required")
	}
}

// writeHTML renders the file-backed page to path.
func (op *openedPage) writeHTML(path string) error {
	if path == "" || op.html == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := op.html.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
