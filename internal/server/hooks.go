package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/desertthunder/listsync/internal/tasks"
)

const (
	// EventsRoute receives record events from the CRM.
	EventsRoute = "POST /hooks/events"
	// SyncActionRoute is the bound action behind the sync button of a marketing list.
	SyncActionRoute = "POST /api/lists/{id}/sync"

	createMessage = "Create"
	updateMessage = "Update"
	maxBodyBytes  = 1 << 20
)

// Dispatcher runs the handler registered for a trigger. Implemented by [tasks.Dispatcher].
type Dispatcher interface {
	Handles(logicalName string) bool
	Dispatch(ctx context.Context, ec *tasks.ExecutionContext) (*tasks.Outcome, error)
}

// Response is the JSON body of every hook reply.
type Response struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Kind    string         `json:"kind,omitempty"`
	Outputs map[string]any `json:"outputs,omitempty"`
}

// HookHandler turns record events and sync button clicks into handler runs.
type HookHandler struct {
	dispatcher Dispatcher
	logger     *log.Logger
}

// NewHookHandler creates a [HookHandler].
func NewHookHandler(dispatcher Dispatcher, logger *log.Logger) *HookHandler {
	return &HookHandler{dispatcher: dispatcher, logger: logger}
}

// Routes implements [Handler].
func (h *HookHandler) Routes() []string {
	return []string{EventsRoute, SyncActionRoute}
}

// ServeHTTP implements [Handler].
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case EventsRoute:
		h.handleEvent(w, r)
	case SyncActionRoute:
		h.handleSyncAction(w, r)
	default:
		writeResponse(w, http.StatusNotFound, Response{Message: "not found"})
	}
}

// handleEvent accepts {"message":"Create|Update","target":{"logical_name":"...","id":"..."}}.
func (h *HookHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeResponse(w, http.StatusBadRequest, Response{Message: "could not read request body"})
		return
	}
	if !gjson.ValidBytes(body) {
		writeResponse(w, http.StatusBadRequest, Response{Message: "request body is not valid JSON"})
		return
	}

	message := gjson.GetBytes(body, "message").String()
	target := models.EntityReference{
		LogicalName: gjson.GetBytes(body, "target.logical_name").String(),
		ID:          gjson.GetBytes(body, "target.id").String(),
	}

	if !triggers(message, target.LogicalName) {
		writeResponse(w, http.StatusOK, Response{OK: true, Message: fmt.Sprintf("ignored %s event", message)})
		return
	}
	if target.LogicalName == "" || target.ID == "" {
		writeResponse(w, http.StatusBadRequest, Response{Message: "target.logical_name and target.id are required"})
		return
	}

	if !h.dispatcher.Handles(target.LogicalName) {
		writeResponse(w, http.StatusOK, Response{OK: true, Message: fmt.Sprintf("no handler for %s", target.LogicalName)})
		return
	}

	h.dispatch(w, r, target)
}

// triggers reports whether an event message fires a handler. Lists push on create and update;
// sync records poll on create only. An empty message counts as a create.
func triggers(message, logicalName string) bool {
	switch {
	case message == "", strings.EqualFold(message, createMessage):
		return true
	case strings.EqualFold(message, updateMessage):
		return logicalName == models.ListSchema.LogicalName
	default:
		return false
	}
}

// handleSyncAction pushes the list named in the path.
func (h *HookHandler) handleSyncAction(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, models.EntityReference{LogicalName: models.ListSchema.LogicalName, ID: r.PathValue("id")})
}

func (h *HookHandler) dispatch(w http.ResponseWriter, r *http.Request, target models.EntityReference) {
	if !shared.IsGUID(target.ID) {
		writeResponse(w, http.StatusBadRequest, Response{
			Message: fmt.Sprintf("%q is not a valid record id", target.ID),
			Kind:    "invalid_argument",
		})
		return
	}
	target.ID = shared.NormalizeGUID(target.ID)

	ec := tasks.NewExecutionContext(target, h.logger)
	outcome, err := h.dispatcher.Dispatch(r.Context(), ec)
	if err != nil {
		status, resp := errorResponse(err)
		if outcome != nil {
			resp.Message = describe(outcome) + "; " + resp.Message
		}
		resp.Outputs = ec.Outputs
		writeResponse(w, status, resp)
		return
	}

	writeResponse(w, http.StatusOK, Response{OK: true, Message: describe(outcome), Outputs: outcome.Outputs})
}

// describe summarizes a successful outcome for the caller.
func describe(outcome *tasks.Outcome) string {
	var parts []string

	if push := outcome.Push; push != nil {
		if push.Skipped || push.Record == nil {
			parts = append(parts, "nothing to push")
		} else {
			parts = append(parts, fmt.Sprintf("batch %s submitted with %d operations", push.Record.BatchID, push.Operations))
		}
	}

	if poll := outcome.Poll; poll != nil {
		if poll.Skipped || poll.Record == nil {
			parts = append(parts, "nothing to poll")
		} else {
			parts = append(parts, fmt.Sprintf("batch %s is %s", poll.Record.BatchID, poll.Status))
		}
	}

	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, "; ")
}

var kindCodes = map[error]string{
	shared.ErrMissingConfiguration:  "missing_configuration",
	shared.ErrMissingExternalListID: "missing_external_list_id",
	shared.ErrUnsupportedMemberType: "unsupported_member_type",
	shared.ErrNoMembersFound:        "no_members_found",
	shared.ErrMissingBatchID:        "missing_batch_id",
	shared.ErrRemoteCall:            "remote_call",
	shared.ErrResponseParse:         "response_parse",
	shared.ErrUpstreamFault:         "upstream_fault",
}

// errorResponse maps a handler failure to a status code and body.
func errorResponse(err error) (int, Response) {
	resp := Response{Message: err.Error()}

	var execErr *tasks.ExecutionError
	if errors.As(err, &execErr) {
		resp.Message = execErr.Message
		resp.Kind = kindCodes[execErr.Kind]
	}

	switch {
	case errors.Is(err, shared.ErrRecordNotFound):
		return http.StatusNotFound, resp
	case errors.Is(err, shared.ErrMissingConfiguration),
		errors.Is(err, shared.ErrMissingExternalListID),
		errors.Is(err, shared.ErrUnsupportedMemberType),
		errors.Is(err, shared.ErrNoMembersFound),
		errors.Is(err, shared.ErrMissingBatchID):
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, shared.ErrRemoteCall), errors.Is(err, shared.ErrResponseParse):
		return http.StatusBadGateway, resp
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest, resp
	default:
		return http.StatusInternalServerError, resp
	}
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Default().Warn("failed to write response", "error", err)
	}
}
