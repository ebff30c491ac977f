// Package main provides the CLI entrypoint for cyberdefender.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cyberdefender/internal/config"
	"github.com/verte-zerg/cyberdefender/internal/content"
	"github.com/verte-zerg/cyberdefender/internal/leaderboard"
	"github.com/verte-zerg/cyberdefender/internal/logging"
	"github.com/verte-zerg/cyberdefender/internal/model"
	"github.com/verte-zerg/cyberdefender/internal/session"
	"github.com/verte-zerg/cyberdefender/internal/stats"
	"github.com/verte-zerg/cyberdefender/internal/store"
	"github.com/verte-zerg/cyberdefender/internal/tui"
)

var (
	logFile string
	verbose bool

	playTimeLimit int
	playOffline   bool
	playModel     string
	playPack      string

	leaderboardClear bool

	statsModule string
	statsLast   int

	contentOffline bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cyberdefender",
		Short:         "Terminal cybersecurity awareness trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "diagnostics log path (empty disables logging)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log debug details")

	rootCmd.Flags().IntVar(&playTimeLimit, "time-limit", defaultTimeLimit, "seconds per module")
	rootCmd.Flags().BoolVar(&playOffline, "offline", false, "never call the content generator")
	rootCmd.Flags().StringVar(&playModel, "model", content.DefaultModel, "generator model name")
	rootCmd.Flags().StringVar(&playPack, "pack", "", "YAML fallback content pack")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newContentCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "time-limit", &playTimeLimit, fileCfg.Game.TimeLimit)
	applyBoolConfig(cmd, "offline", &playOffline, fileCfg.Content.Offline)
	applyStringConfig(cmd, "model", &playModel, fileCfg.Content.Model)
	applyStringConfig(cmd, "pack", &playPack, fileCfg.Content.Pack)

	rules, err := buildRules(fileCfg.Game, playTimeLimit)
	if err != nil {
		return err
	}
	contentCfg, err := buildContentConfig(fileCfg.Content, playModel, playPack, playOffline)
	if err != nil {
		return err
	}

	logger, err := openLogger()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	provider, err := buildProvider(ctx, contentCfg, logger)
	if err != nil {
		return err
	}
	board := leaderboard.New(st, rules.LeaderboardSize, logger)
	ctrl := session.NewController(rules, board,
		session.WithRunRecorder(st),
		session.WithLogger(logger),
	)
	logger.Info("starting",
		zap.Duration("time_limit", rules.TimeLimit),
		zap.Bool("offline", contentCfg.Offline),
		zap.String("model", contentCfg.Model))

	m := tui.NewModel(ctx, tui.Options{
		Controller: ctrl,
		Content:    provider,
		Board:      board,
		Logger:     logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the high score table",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().BoolVar(&leaderboardClear, "clear", false, "remove every stored score")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	rules, err := buildRules(fileCfg.Game, defaultTimeLimit)
	if err != nil {
		return err
	}
	logger, err := openLogger()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	board := leaderboard.New(st, rules.LeaderboardSize, logger)
	if leaderboardClear {
		if err := board.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear leaderboard: %w", err)
		}
		logErrln("Leaderboard cleared.")
		return nil
	}
	out := cmd.OutOrStdout()
	return stats.RenderLeaderboard(out, board.Read(ctx), stats.ShouldUseColor(out))
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show module run history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsModule, "module", "", "module filter (documents, phishing, password)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter := model.RunFilter{Last: statsLast}
	if statsModule != "" {
		id, err := model.ParseModuleID(strings.ToLower(strings.TrimSpace(statsModule)))
		if err != nil {
			return fmt.Errorf("invalid --module value: %w", err)
		}
		filter.Module = id
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, filter)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return report.Render(out, stats.ShouldUseColor(out))
}

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Preview one batch of scenario content",
		Args:  cobra.NoArgs,
		RunE:  runContentCmd,
	}
	cmd.Flags().BoolVar(&contentOffline, "offline", false, "show the fallback pack without calling the generator")
	return cmd
}

func runContentCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	modelName := content.DefaultModel
	pack := ""
	applyStringConfig(cmd, "model", &modelName, fileCfg.Content.Model)
	applyStringConfig(cmd, "pack", &pack, fileCfg.Content.Pack)
	applyBoolConfig(cmd, "offline", &contentOffline, fileCfg.Content.Offline)
	contentCfg, err := buildContentConfig(fileCfg.Content, modelName, pack, contentOffline)
	if err != nil {
		return err
	}

	logger, err := openLogger()
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := buildProvider(ctx, contentCfg, logger)
	if err != nil {
		return err
	}

	var (
		docs          []model.DocumentItem
		emails        []model.EmailItem
		docsFallback  bool
		emailFallback bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, docsFallback = provider.Documents(gctx)
		return nil
	})
	g.Go(func() error {
		emails, emailFallback = provider.Emails(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return writeContentPreview(cmd.OutOrStdout(), docs, docsFallback, emails, emailFallback)
}

func writeContentPreview(w io.Writer, docs []model.DocumentItem, docsFallback bool, emails []model.EmailItem, emailFallback bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Documents (%s)\n", sourceLabel(docsFallback))
	for _, d := range docs {
		fmt.Fprintf(&b, "  %-13s %s\n", d.Sensitivity, runewidth.Truncate(d.Name, 60, "…"))
	}
	fmt.Fprintf(&b, "\nEmails (%s)\n", sourceLabel(emailFallback))
	for _, e := range emails {
		flag := "ok      "
		if e.IsPhishing {
			flag = "PHISHING"
		}
		fmt.Fprintf(&b, "  %s  %s | %s\n", flag,
			runewidth.Truncate(e.Sender, 30, "…"),
			runewidth.Truncate(e.Subject, 40, "…"))
	}
	if _, err := w.Write([]byte(b.String())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func sourceLabel(fallback bool) string {
	if fallback {
		return "fallback"
	}
	return "generated"
}

func buildProvider(ctx context.Context, cfg model.ContentConfig, logger *zap.Logger) (*content.Source, error) {
	pack := content.DefaultPack()
	if cfg.PackPath != "" {
		loaded, err := content.LoadPack(cfg.PackPath)
		if err != nil {
			return nil, err
		}
		pack = loaded
	}
	var gen content.Generator
	switch key := content.LookupAPIKey(cfg.APIKeyEnv); {
	case cfg.Offline:
		logger.Info("offline mode, using fallback content")
	case key == "":
		logger.Info("no API key configured, using fallback content")
	default:
		client, err := content.NewGenAIGenerator(ctx, key, cfg.Model)
		if err != nil {
			logger.Warn("content generator unavailable, using fallback content", zap.Error(err))
			break
		}
		rc := content.DefaultResilientConfig()
		rc.MaxAttempts = cfg.Retries
		gen = content.NewResilientGenerator(client, rc, logger)
	}
	return content.NewSource(gen, pack, cfg.Timeout, logger), nil
}

func openLogger() (*zap.Logger, error) {
	logger, err := logging.New(logFile, verbose)
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
