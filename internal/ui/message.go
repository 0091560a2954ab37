package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListsFetched MsgKind = iota
	MsgProgressUpdate
	MsgPushComplete
)

type listsFetched struct {
	lists []*models.MarketingList
	err   error
}

type pushComplete struct {
	outcome *tasks.Outcome
	err     error
}

// listsFetchedMsg is the constructor for [MsgListsFetched]
func listsFetchedMsg(lists []*models.MarketingList, err error) Msg {
	return Msg{kind: MsgListsFetched, data: listsFetched{lists, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// pushCompleteMsg is the constructor for [MsgPushComplete]
func pushCompleteMsg(outcome *tasks.Outcome, err error) Msg {
	return Msg{kind: MsgPushComplete, data: pushComplete{outcome, err}}
}
