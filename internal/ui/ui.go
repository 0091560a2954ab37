package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	ConfirmView
	PushView
	ResultView
)

// ListSource provides the marketing lists shown in [ListView].
type ListSource interface {
	List(criteria map[string]any) ([]*models.MarketingList, error)
}

// Dispatcher runs the handler for a trigger.
type Dispatcher interface {
	Dispatch(ctx context.Context, ec *tasks.ExecutionContext) (*tasks.Outcome, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	lists        ListSource
	dispatcher   Dispatcher
	logger       *log.Logger
	width        int
	height       int
	listModel    list.Model
	loaded       bool
	selected     *models.MarketingList
	progressChan chan tasks.ProgressUpdate
	resultChan   chan pushComplete
	progress     tasks.ProgressUpdate
	outcome      *tasks.Outcome
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, lists ListSource, dispatcher Dispatcher, logger *log.Logger) *Model {
	return &Model{
		ctx:        ctx,
		view:       ListView,
		lists:      lists,
		dispatcher: dispatcher,
		logger:     logger,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by loading marketing lists from the store.
func (m *Model) Init() tea.Cmd {
	return m.fetchLists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded {
			m.listModel.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil
	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case PushView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}
	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == ListView && m.loaded {
		m.listModel, cmd = m.listModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgListsFetched:
		data := msg.data.(listsFetched)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}

		items := make([]list.Item, len(data.lists))
		for i, l := range data.lists {
			items[i] = marketingListItem{list: l}
		}
		m.listModel = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.listModel.Title = "Marketing Lists"
		if m.width > 0 {
			m.listModel.SetSize(m.width-4, m.height-8)
		}
		m.loaded = true
		return m, nil
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()
	case MsgPushComplete:
		data := msg.data.(pushComplete)
		m.outcome = data.outcome
		m.err = data.err
		m.progressChan = nil
		m.resultChan = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ListView:
		return m.renderLists()
	case ConfirmView:
		return m.renderConfirm()
	case PushView:
		return m.renderPush()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	if m.view == ResultView {
		return nil
	}
	return m.err
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.loaded {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.listModel.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.listModel, cmd = m.listModel.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.listModel.SelectedItem().(marketingListItem); ok {
			m.selected = item.list
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.listModel, cmd = m.listModel.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.selected = nil
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = PushView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startPush()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.view = ListView
		m.selected = nil
		m.outcome = nil
		m.err = nil
		return m, m.fetchLists()
	}
	return m, nil
}

func (m *Model) fetchLists() tea.Cmd {
	lists := m.lists
	return func() tea.Msg {
		found, err := lists.List(nil)
		return listsFetchedMsg(found, err)
	}
}

// startPush runs the dispatcher in the background and streams its progress updates.
func (m *Model) startPush() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	results := make(chan pushComplete, 1)
	m.progressChan = progress
	m.resultChan = results

	ec := tasks.NewExecutionContext(m.selected.Reference(), m.logger)
	ec.Progress = progress
	ctx, dispatcher := m.ctx, m.dispatcher

	go func() {
		outcome, err := dispatcher.Dispatch(ctx, ec)
		results <- pushComplete{outcome: outcome, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, results := m.progressChan, m.resultChan
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		res := <-results
		return pushCompleteMsg(res.outcome, res.err)
	}
}

func (m *Model) renderLists() string {
	if !m.loaded {
		return "Loading marketing lists..."
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.listModel.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync '%s' to Mailchimp?", m.selected.Name))
	info := fmt.Sprintf("\nMembers: %s\nMailchimp list: %s\n", m.selected.MemberType(), orNone(m.selected.ExternalListID))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderPush() string {
	title := styles.title.Render("Syncing Marketing List")
	if m.progress.Total == 0 {
		return fmt.Sprintf("%s\n\nStarting...", title)
	}
	return fmt.Sprintf("%s\n\n[%d/%d] %s", title, m.progress.Step, m.progress.Total, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})

	if m.err != nil && (m.outcome == nil || m.outcome.Push == nil) {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("Sync failed: "+userMessage(m.err)), helpView)
	}

	if m.outcome == nil || m.outcome.Push == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	push := m.outcome.Push
	if push.Skipped {
		msg := fmt.Sprintf("Nothing to sync: %s lists are not pushed", m.selected.MemberType())
		return fmt.Sprintf("%s\n\n%s", styles.warn.Render(msg), helpView)
	}

	title := styles.ok.Render("✓ Batch Submitted!")
	rec := push.Record
	info := fmt.Sprintf("\nBatch: %s\nStatus: %s\nOperations: %d", rec.BatchID, rec.Status, push.Operations)
	if poll := m.outcome.Poll; poll != nil && poll.Record != nil {
		info += fmt.Sprintf(
			"\nLatest status: %s (%d/%d finished, %d errored)",
			poll.Status, poll.Record.FinishedOperations, poll.Record.TotalOperations, poll.Record.ErroredOperations,
		)
	}

	var warning string
	if m.err != nil {
		warning = "\n\n" + styles.warn.Render("Status check failed: "+userMessage(m.err))
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, warning, helpView)
}

// userMessage prefers the handler's message over the wrapped error chain.
func userMessage(err error) string {
	var execErr *tasks.ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Message
	}
	return err.Error()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
