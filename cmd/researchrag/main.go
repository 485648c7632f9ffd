// Package main is the entry point for the researchrag client: a terminal UI over the ResearchRAG
// analysis service plus one-shot subcommands for scripting.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/csheth/researchrag/internal/chat"
	"github.com/csheth/researchrag/internal/config"
	"github.com/csheth/researchrag/internal/export"
	"github.com/csheth/researchrag/internal/logging"
	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/service"
	"github.com/csheth/researchrag/internal/session"
	"github.com/csheth/researchrag/internal/submit"
	"github.com/csheth/researchrag/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries what every command needs once configuration has been resolved.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	client   *service.Client
	api      *paper.API
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New(), logger: logging.Discard(), closeLog: func() error { return nil }}

	root := &cobra.Command{
		Use:   "researchrag",
		Short: "Submit research papers and explore their AI analysis",
		Long: `researchrag talks to a ResearchRAG analysis service. Without a subcommand it opens
an interactive terminal UI: paste a paper URL (or an arXiv id) or upload a PDF, read the
generated summary, strengths, weaknesses and future work, ask questions about the paper
and export the analysis as PDF or Markdown.

The subcommands expose the same operations for scripts.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./researchrag.yaml or ~/.config/researchrag/researchrag.yaml)")
	flags.String("endpoint", "", "analysis service base URL (default http://localhost:8000)")
	flags.Duration("timeout", 0, "per-request timeout (default 60s)")
	flags.String("download-dir", "", "directory exports are saved to (default .)")
	flags.String("log-file", "", "append JSON logs to this file")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	bindFlag(a.v, flags.Lookup("endpoint"), config.KeyEndpoint)
	bindFlag(a.v, flags.Lookup("timeout"), config.KeyTimeout)
	bindFlag(a.v, flags.Lookup("download-dir"), config.KeyDownloadDir)
	bindFlag(a.v, flags.Lookup("log-file"), config.KeyLogFile)
	bindFlag(a.v, flags.Lookup("log-level"), config.KeyLogLevel)

	root.Flags().Bool("no-alt-screen", false, "disable the alternate screen buffer")
	root.Flags().String("paper", "", "open an existing paper id instead of the submission form")

	root.AddCommand(
		newSubmitCmd(a),
		newSummaryCmd(a),
		newAskCmd(a),
		newExportCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root, a
}

// setup resolves configuration and builds the shared service client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	used, err := config.Init(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if used != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", used)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog
	a.client = service.New(service.Config{
		Endpoint:  cfg.Endpoint,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
	a.api = paper.NewAPI(a.client)
	logger.Debug("config_loaded", "endpoint", cfg.Endpoint, "timeout", cfg.Timeout.String(), "config_file", used)
	return nil
}

func (a *app) close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "close log file:", err)
	}
}

func (a *app) submitter() *submit.Controller {
	return submit.New(a.api, submit.WithLogger(a.logger))
}

func (a *app) store() *session.Store {
	return session.New(a.api, session.WithLogger(a.logger))
}

func (a *app) chats() *chat.Controller {
	return chat.New(a.api, chat.WithLogger(a.logger))
}

func (a *app) exporter(dir string) *export.Controller {
	return export.New(a.api, export.NewDirSink(dir), export.WithLogger(a.logger))
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	noAltScreen, _ := cmd.Flags().GetBool("no-alt-screen")
	paperID, _ := cmd.Flags().GetString("paper")

	opts := []tea.ProgramOption{}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Submit:   a.submitter(),
			Session:  a.store(),
			Chat:     a.chats(),
			Export:   a.exporter(a.cfg.DownloadDir),
			Endpoint: a.client.Endpoint(),
			PaperID:  paperID,
			Logger:   a.logger,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func bindFlag(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd()
	defer a.close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
