package autorun

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/atinylittleshell/autorun/internal/config"
	"github.com/atinylittleshell/autorun/internal/host"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"
)

var commentPrefixes = []string{"#", "//", "/*"}

// IsComment reports whether a trimmed line starts with a comment marker.
func IsComment(line string) bool {
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// LooksLikeShellCommand reports whether line parses as at least one shell statement.
func LooksLikeShellCommand(line string) bool {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return false
	}
	return len(file.Stmts) > 0
}

// onEditorChange is the debounced reaction. It runs on a timer goroutine.
func (c *Controller) onEditorChange(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("autorun reaction panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	if !c.Enabled() {
		return
	}

	editor := c.host.Window.ActiveTextEditor()
	if editor == nil {
		return
	}

	cfg := c.config.Snapshot()
	if !cfg.LanguageAllowed(editor.LanguageID()) {
		return
	}

	line := editor.CursorLine()
	text := strings.TrimSpace(editor.LineText(line))
	if text == "" || IsComment(text) {
		return
	}

	if err := c.runLine(ctx, cfg, editor, line); err != nil {
		c.logger.Error("autorun reaction failed", zap.Error(err))
	}
}

func (c *Controller) runLine(ctx context.Context, cfg *config.Config, editor host.TextEditor, line int) error {
	if err := c.host.Commands.Execute(ctx, host.CommandTriggerSuggestion); err != nil {
		return fmt.Errorf("trigger suggestion: %w", err)
	}

	if err := sleep(ctx, cfg.SuggestionDelayDuration()); err != nil {
		return err
	}

	if err := c.host.Commands.Execute(ctx, host.CommandCommitSuggestion); err != nil {
		return fmt.Errorf("commit suggestion: %w", err)
	}

	command := strings.TrimSpace(editor.LineText(line))
	if command == "" {
		return nil
	}

	if cfg.RequireShellSyntax && !LooksLikeShellCommand(command) {
		c.logger.Debug("skipping line that does not parse as shell", zap.String("line", command))
		return nil
	}

	terminal, err := c.terminal(cfg)
	if err != nil {
		return err
	}

	terminal.Show(true)
	terminal.SendText(command, true)

	c.logger.Info("sent line to terminal",
		zap.String("terminal", terminal.Name()),
		zap.String("command", command))
	return nil
}

// terminal finds the configured terminal or creates it in the first workspace folder.
func (c *Controller) terminal(cfg *config.Config) (host.Terminal, error) {
	if t := host.FindTerminal(c.host.Window, cfg.TerminalName); t != nil {
		return t, nil
	}

	opts := host.TerminalOptions{Name: cfg.TerminalName}
	if c.host.Workspace != nil {
		if folders := c.host.Workspace.Folders(); len(folders) > 0 {
			opts.Cwd = folders[0]
		}
	}

	t, err := c.host.Window.CreateTerminal(opts)
	if err != nil {
		return nil, fmt.Errorf("create terminal %q: %w", cfg.TerminalName, err)
	}
	return t, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
