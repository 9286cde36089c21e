// Package autorun watches editing activity and, once typing settles, asks the
// host to complete the current line and sends the result to a terminal.
package autorun

import (
	"context"
	"sync"

	"github.com/atinylittleshell/autorun/internal/config"
	"github.com/atinylittleshell/autorun/internal/host"
	"go.uber.org/zap"
)

// Command ids registered by the controller.
const (
	CommandToggle  = "autorun.toggle"
	CommandEnable  = "autorun.enable"
	CommandDisable = "autorun.disable"
)

// KeyHasShownWarning is the memento key recording that the first-run warning was resolved.
const KeyHasShownWarning = "hasShownWarning"

const (
	messageEnabled   = "AutoRun: ENABLED ⚠️ Use with caution!"
	messageDisabled  = "AutoRun: DISABLED"
	messageWarning   = "AutoRun can automatically execute commands. Use only in trusted environments!"
	actionUnderstand = "I Understand"
)

// Controller owns the enabled flag, the editor subscriptions and the
// status indicator for one host.
type Controller struct {
	host   host.Host
	config config.Source
	logger *zap.Logger

	status    *StatusIndicator
	debouncer *Debouncer

	mu            sync.Mutex
	ctx           context.Context
	enabled       bool
	subscriptions []host.Disposable
	commands      []host.Disposable
}

// New creates a disabled controller. Nothing is shown until Activate.
func New(h host.Host, source config.Source, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		host:      h,
		config:    source,
		logger:    logger,
		status:    NewStatusIndicator(h.Window),
		debouncer: &Debouncer{},
		ctx:       context.Background(),
	}
}

// Enabled reports whether the controller reacts to editing activity.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Enable subscribes to document and selection changes. It is a no-op when
// already enabled.
func (c *Controller) Enable() {
	c.mu.Lock()
	if c.enabled {
		c.mu.Unlock()
		return
	}

	cfg := c.config.Snapshot()
	delay := cfg.DebounceDelayDuration()
	ctx := c.ctx

	// Events fired just before Disable can still arrive here.
	schedule := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.enabled {
			return
		}
		c.debouncer.Schedule(func() {
			c.onEditorChange(ctx)
		}, delay)
	}

	c.enabled = true
	c.subscriptions = append(c.subscriptions,
		c.host.Events.OnDidChangeTextDocument(schedule),
		c.host.Events.OnDidChangeTextEditorSelection(schedule),
	)
	c.mu.Unlock()

	c.logger.Info("autorun enabled", zap.Duration("debounce", delay))
	c.status.Render(true)
	c.notify(cfg, messageEnabled)
}

// Disable drops every subscription and any pending reaction. A reaction that
// already started runs to completion.
func (c *Controller) Disable() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}

	c.enabled = false
	subscriptions := c.subscriptions
	c.subscriptions = nil
	c.mu.Unlock()

	for _, s := range subscriptions {
		s.Dispose()
	}
	c.debouncer.Cancel()

	c.logger.Info("autorun disabled")
	c.status.Render(false)
	c.notify(c.config.Snapshot(), messageDisabled)
}

// Toggle flips the enabled state.
func (c *Controller) Toggle() {
	if c.Enabled() {
		c.Disable()
	} else {
		c.Enable()
	}
}

// SubscriptionCount returns the number of live editor subscriptions.
func (c *Controller) SubscriptionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscriptions)
}

// Activate shows the status indicator, registers the toggle commands, applies
// enableOnStartup and shows the first-run warning if it was never resolved.
// ctx is passed to every host command a reaction executes.
func (c *Controller) Activate(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.status.Render(c.Enabled())

	c.registerCommand(CommandToggle, c.Toggle)
	c.registerCommand(CommandEnable, c.Enable)
	c.registerCommand(CommandDisable, c.Disable)

	cfg := c.config.Snapshot()
	if cfg.EnableOnStartup {
		c.Enable()
	}

	c.showFirstRunWarning()
}

func (c *Controller) registerCommand(id string, fn func()) {
	d := c.host.Commands.Register(id, func(context.Context) error {
		fn()
		return nil
	})

	c.mu.Lock()
	c.commands = append(c.commands, d)
	c.mu.Unlock()
}

func (c *Controller) showFirstRunWarning() {
	if c.host.Memento == nil || c.host.Memento.GetBool(KeyHasShownWarning, false) {
		return
	}

	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	choices := c.host.Window.ShowWarningMessage(messageWarning, actionUnderstand)
	go func() {
		var choice string
		select {
		case resolved, ok := <-choices:
			if !ok {
				c.logger.Debug("first-run warning closed without a choice")
				return
			}
			choice = resolved
		case <-ctx.Done():
			return
		}
		c.logger.Debug("first-run warning resolved", zap.String("choice", choice))

		if err := c.host.Memento.UpdateBool(KeyHasShownWarning, true); err != nil {
			c.logger.Error("failed to persist first-run warning flag", zap.Error(err))
		}
	}()
}

// Deactivate disables the controller and releases its commands and status item.
func (c *Controller) Deactivate() {
	c.Disable()

	c.mu.Lock()
	commands := c.commands
	c.commands = nil
	c.mu.Unlock()

	for _, d := range commands {
		d.Dispose()
	}
	c.status.Dispose()
}

func (c *Controller) notify(cfg *config.Config, message string) {
	if !cfg.ShowNotifications {
		return
	}
	c.host.Window.ShowInformationMessage(message)
}
