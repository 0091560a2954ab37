package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// Outcome collects what a dispatch did.
type Outcome struct {
	Push    *PushResult
	Poll    *PollResult
	Outputs map[string]any
}

// Dispatcher routes a trigger to the handler registered for its logical name.
//
// With chaining on, a push that creates a sync record is followed by a poll of that record,
// the same way creating a sync record in the CRM triggers a poll.
type Dispatcher struct {
	initiator *Initiator
	poller    *Poller
	chainPoll bool
}

func NewDispatcher(initiator *Initiator, poller *Poller, chainPoll bool) *Dispatcher {
	return &Dispatcher{initiator: initiator, poller: poller, chainPoll: chainPoll}
}

// Handles reports whether a handler exists for the logical name.
func (d *Dispatcher) Handles(logicalName string) bool {
	switch logicalName {
	case models.ListSchema.LogicalName, models.SyncSchema.LogicalName:
		return true
	default:
		return false
	}
}

// Dispatch runs the handler for ec.Target.
//
// When a chained poll fails the outcome still carries the successful push.
func (d *Dispatcher) Dispatch(ctx context.Context, ec *ExecutionContext) (*Outcome, error) {
	if ec.Outputs == nil {
		ec.Outputs = map[string]any{}
	}
	outcome := &Outcome{Outputs: ec.Outputs}

	switch ec.Target.LogicalName {
	case models.ListSchema.LogicalName:
		push, err := d.initiator.Execute(ctx, ec)
		if err != nil {
			return nil, err
		}
		outcome.Push = push

		if !d.chainPoll || push.Record == nil {
			return outcome, nil
		}

		poll, err := d.poller.Execute(ctx, ec.Derive(push.Record.Reference()))
		if err != nil {
			return outcome, err
		}
		outcome.Poll = poll
		return outcome, nil
	case models.SyncSchema.LogicalName:
		poll, err := d.poller.Execute(ctx, ec)
		if err != nil {
			return nil, err
		}
		outcome.Poll = poll
		return outcome, nil
	default:
		return nil, fmt.Errorf("%w: no handler for %q", shared.ErrInvalidInput, ec.Target.LogicalName)
	}
}
