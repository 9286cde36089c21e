package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atinylittleshell/autorun/internal/autorun"
	"github.com/atinylittleshell/autorun/internal/config"
	"github.com/atinylittleshell/autorun/internal/core"
	"github.com/atinylittleshell/autorun/internal/editor"
	"github.com/atinylittleshell/autorun/internal/host/tui"
	"github.com/atinylittleshell/autorun/internal/predict"
	"github.com/atinylittleshell/autorun/internal/state"
	"github.com/atinylittleshell/autorun/internal/styles"
	"github.com/atinylittleshell/autorun/internal/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

//go:embed config.default.yaml
var defaultConfigContent string

var configPath = flag.String("config", "", "path to the configuration file (default ~/.autorun/config.yaml)")
var languageFlag = flag.String("lang", "", "language id of the opened document (default: from the file extension)")
var enableFlag = flag.Bool("enable", false, "enable autorun on startup")
var historyFlag = flag.Int("history", 0, "print the last `n` commands sent to terminals and exit")
var resetWarningFlag = flag.Bool("reset-warning", false, "show the first-run warning again on next start and exit")
var resetHistoryFlag = flag.Bool("reset-history", false, "delete the history of commands sent to terminals and exit")
var initConfigFlag = flag.Bool("init-config", false, "write the default configuration file if none exists and exit")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `autorun - run the line you just typed, in a terminal, as soon as you stop typing

USAGE:
  autorun [options] [file]

While enabled, every pause in typing accepts the inline suggestion for the
current line and sends the line to the terminal named by terminalName.
Only use it on files and in directories you trust.

KEYS:
  ctrl+t   toggle autorun          ctrl+p   command palette
  tab      accept suggestion       ctrl+v   paste
  ctrl+o   focus terminal          ctrl+s   save
  ctrl+x   interrupt command       ctrl+q   quit
  (ctrl+c interrupts while the terminal is focused, quits otherwise)

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	path := *configPath
	if path == "" {
		path = core.ConfigFile()
	}

	logger, err := initializeLogger(path)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new autorun session --------", zap.Any("args", os.Args))

	if err := run(context.Background(), path, logger); err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string, logger *zap.Logger) error {
	// autorun -init-config
	if *initConfigFlag {
		return writeDefaultConfig(os.Stdout, configFile)
	}

	store, err := state.NewStore(core.StateFile())
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	// autorun -history 20
	if *historyFlag > 0 {
		entries, err := store.GetRecentEntries("", *historyFlag)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		printHistory(os.Stdout, entries, time.Now())
		return nil
	}

	// autorun -reset-warning
	if *resetWarningFlag {
		if err := store.DeleteKey(autorun.KeyHasShownWarning); err != nil {
			return fmt.Errorf("failed to reset warning: %w", err)
		}
		fmt.Println(styles.SUCCESS("The first-run warning will be shown on next start."))
		return nil
	}

	// autorun -reset-history
	if *resetHistoryFlag {
		return resetHistory(os.Stdout, store)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("autorun needs an interactive terminal")
	}

	var overrides []func(*config.Config)
	if *enableFlag {
		overrides = append(overrides, func(cfg *config.Config) { cfg.EnableOnStartup = true })
	}
	source := config.NewFileSource(configFile, logger, overrides...)

	return runEditor(ctx, flag.Arg(0), source, store, logger)
}

// runEditor opens filePath in the terminal editor and runs the controller
// against it until the user quits.
func runEditor(ctx context.Context, filePath string, source config.Source, store *state.Store, logger *zap.Logger) error {
	doc, err := openDocument(filePath, *languageFlag)
	if err != nil {
		return err
	}

	folder, err := workspaceFolder(filePath)
	if err != nil {
		return err
	}

	cfg := source.Snapshot()
	terminals := terminal.NewManager(store, logger)

	h := tui.New(tui.Options{
		Document:  doc,
		Path:      filePath,
		Terminals: terminals,
		Predictor: initializePredictor(cfg.Predict, store, logger),
		Memento:   store,
		Folders:   []string{folder},
		Logger:    logger,
	})
	defer h.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controller := autorun.New(h.Capabilities(), source, logger)
	model := tui.NewModel(h, tui.ModelOptions{
		OnStart: func() { controller.Activate(ctx) },
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	h.Attach(p)

	_, err = p.Run()
	cancel()
	h.Detach()
	controller.Deactivate()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}

// openDocument loads filePath, or starts an empty document when it does not exist yet.
func openDocument(filePath, languageID string) (*editor.Document, error) {
	text := ""
	if filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		text = string(content)
	}

	if languageID == "" {
		languageID = "shellscript"
		if filePath != "" {
			languageID = editor.LanguageForPath(filePath)
		}
	}

	return editor.NewDocument(text, languageID), nil
}

// workspaceFolder is the directory of the opened file, or the working directory.
func workspaceFolder(filePath string) (string, error) {
	if filePath != "" {
		return filepath.Abs(filepath.Dir(filePath))
	}
	return os.Getwd()
}

func initializeLogger(configFile string) (*zap.Logger, error) {
	result, err := config.NewLoader(nil).LoadFromFile(configFile)
	if err != nil {
		result = &config.LoadResult{Config: config.DefaultConfig()}
	}

	logLevel, err := zap.ParseAtomicLevel(result.Config.LogLevel)
	if err != nil {
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Initialize the logger
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs only go to file to avoid interfering with the Bubble Tea UI
	// Use `tail -f ~/.autorun/autorun.log` to monitor logs in real-time

	return loggerConfig.Build()
}

func initializePredictor(cfg config.PredictConfig, store *state.Store, logger *zap.Logger) predict.Predictor {
	predictors := []predict.Predictor{
		predict.NewHistoryPredictor(store, cfg.HistoryLimit, logger),
	}
	if llm := predict.NewLLMPredictorFromConfig(cfg, logger); llm != nil {
		predictors = append(predictors, llm)
	}

	return predict.NewRouter(predict.RouterConfig{
		Predictors: predictors,
		Logger:     logger,
	})
}

func printHistory(w io.Writer, entries []state.DispatchEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, styles.DIM("No commands have been run yet."))
		return
	}

	for _, entry := range entries {
		exit := "…"
		if entry.ExitCode.Valid {
			exit = fmt.Sprint(entry.ExitCode.Int32)
		}

		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			styles.DIM(fmt.Sprintf("%-14s", humanize.RelTime(entry.CreatedAt, now, "ago", "from now"))),
			fmt.Sprintf("%3s", exit),
			styles.COMMAND(entry.Command),
			styles.DIM(entry.Directory),
		)
	}
}

func resetHistory(w io.Writer, store *state.Store) error {
	if err := store.ResetHistory(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	fmt.Fprintln(w, styles.SUCCESS("Command history cleared."))
	return nil
}

func writeDefaultConfig(w io.Writer, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "%s already exists\n", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintln(w, styles.SUCCESS("Wrote "+path))
	return nil
}
