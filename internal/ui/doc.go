// Package ui implements the sync button as an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [ListView] : Browse marketing lists
//  2. [ConfirmView] : Confirm the push of the selected list
//  3. [PushView] : Monitor progress updates from the handlers
//  4. [ResultView] : Display the batch id and status, or the failure message
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the dispatcher, providing non-blocking status reporting during a push.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
