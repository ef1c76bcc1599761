package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uncss/cmd/uncss/page"
	"uncss/cmd/uncss/ui"
	"uncss/internal/logging"
	"uncss/internal/submission"
)

// runInteractive launches the page.
func runInteractive(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	client, wait, err := newClient(ctx)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		if err := wait(); err != nil {
			logger.Warn("embedded service stopped with error", zap.Error(err))
		}
	}()

	ctrl := submission.New(client, submission.WithLogger(logging.For(logger, logging.CategorySubmission)))

	theme := ui.ThemeFor(cfg.UI.Theme)
	m, err := page.New(page.Config{
		Controller: ctrl,
		Styles:     ui.NewStyles(theme),
		Logger:     logging.For(logger, logging.CategoryUI),
	})
	if err != nil {
		ctrl.Close()
		return err
	}

	logging.For(logger, logging.CategoryBoot).Info("starting interactive page",
		zap.String("endpoint", client.Endpoint()),
		zap.String("theme", theme.Name))

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(page.Model); ok {
		fm.Shutdown()
	} else {
		m.Shutdown()
	}
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
