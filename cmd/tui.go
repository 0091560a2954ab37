package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/desertthunder/listsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive sync button.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	dispatcher, err := r.dispatcher(cmd.Bool("poll"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, repositories.NewMarketingListRepository(db), dispatcher, r.logger)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
