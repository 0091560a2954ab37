// package tasks implements the two sync handlers and the dispatch between them.
//
// The [Initiator] pushes a marketing list to the batch API and the [Poller] refreshes a sync record
// from it. Both take an explicit [ExecutionContext] carrying the trigger, the trace logger and the
// output parameters.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
)

// ListStore loads marketing lists.
type ListStore interface {
	Get(id string) (*models.MarketingList, error)
}

// MemberStore runs the list membership query.
type MemberStore interface {
	ListByMarketingList(listID string, kind models.MemberType) ([]models.Member, error)
}

// ConfigurationStore resolves the active Mailchimp configuration.
type ConfigurationStore interface {
	Latest(requireComplete bool) (*models.Configuration, error)
}

// SyncStore persists sync records.
type SyncStore interface {
	Create(rec *models.SyncRecord) error
	Get(id string) (*models.SyncRecord, error)
	Update(rec *models.SyncRecord) error
}

// BatchClient submits and reads batch jobs. Implemented by [services.MailchimpService].
type BatchClient interface {
	CreateBatch(ctx context.Context, creds services.Credentials, payload []byte) (*services.BatchResponse, error)
	GetBatch(ctx context.Context, creds services.Credentials, batchID string) (*services.BatchResponse, error)
}

// ExecutionContext is everything a handler needs to know about one trigger.
type ExecutionContext struct {
	Target   models.EntityReference
	Logger   *log.Logger           // trace sink; nil discards
	Outputs  map[string]any        // output parameters written by handlers
	Progress chan<- ProgressUpdate // optional, never blocks
}

// NewExecutionContext creates a context for target with an empty output set.
func NewExecutionContext(target models.EntityReference, logger *log.Logger) *ExecutionContext {
	return &ExecutionContext{Target: target, Logger: logger, Outputs: map[string]any{}}
}

// Derive returns a context for another target sharing the logger, outputs and progress channel.
func (ec *ExecutionContext) Derive(target models.EntityReference) *ExecutionContext {
	if ec.Outputs == nil {
		ec.Outputs = map[string]any{}
	}
	return &ExecutionContext{Target: target, Logger: ec.Logger, Outputs: ec.Outputs, Progress: ec.Progress}
}

// SetOutput records an output parameter.
func (ec *ExecutionContext) SetOutput(name string, value any) {
	if ec.Outputs == nil {
		ec.Outputs = map[string]any{}
	}
	ec.Outputs[name] = value
}

func (ec *ExecutionContext) logger(handler string) *log.Logger {
	l := ec.Logger
	if l == nil {
		l = log.New(io.Discard)
	}
	return l.With("handler", handler, "target", ec.Target.String())
}

// ExecutionError is the user-facing failure of a handler.
//
// Kind is one of the shared sync sentinels; Err is the underlying cause, if any.
type ExecutionError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// fail traces the failure and returns it as an [*ExecutionError].
func fail(logger *log.Logger, kind error, message string, err error) error {
	if err != nil {
		logger.Error(message, "kind", kind, "err", err)
	} else {
		logger.Error(message, "kind", kind)
	}
	return &ExecutionError{Kind: kind, Message: message, Err: err}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
