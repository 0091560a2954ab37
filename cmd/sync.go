package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/formatter"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// syncView is the JSON shape of a dispatch outcome.
type syncView struct {
	Target  string             `json:"target"`
	Skipped bool               `json:"skipped"`
	Batch   *formatter.SyncRow `json:"batch,omitempty"`
	Outputs map[string]any     `json:"outputs,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// dispatch runs the handler for target and prints its progress unless quiet.
func (r *Runner) dispatch(ctx context.Context, target models.EntityReference, chainPoll, quiet bool) (*tasks.Outcome, error) {
	dispatcher, err := r.dispatcher(chainPoll)
	if err != nil {
		return nil, err
	}

	ec := tasks.NewExecutionContext(target, r.logger)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if !quiet {
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()
	ec.Progress = progressCh

	outcome, err := dispatcher.Dispatch(ctx, ec)
	close(progressCh)
	<-done

	return outcome, err
}

// SyncPush submits the members of a marketing list as one Mailchimp batch.
func (r *Runner) SyncPush(ctx context.Context, cmd *cli.Command) error {
	listID, err := guidArg(cmd, "list-id")
	if err != nil {
		return err
	}

	target := models.EntityReference{LogicalName: models.ListSchema.LogicalName, ID: listID}
	asJSON := cmd.Bool("json")

	r.logger.Info("pushing marketing list", "id", listID, "poll", cmd.Bool("poll"))
	outcome, err := r.dispatch(ctx, target, cmd.Bool("poll"), asJSON)

	if asJSON {
		return r.writeOutcome(target, outcome, err)
	}

	if outcome != nil && outcome.Push != nil {
		push := outcome.Push
		if push.Skipped {
			r.writePlainln("Nothing to push: list type is not synced")
		} else {
			r.writePlain("\n")
			r.writePlainHeader("Batch Submitted")
			r.printRecord(push.Record)
			r.writePlain("Operations: %d\n", push.Operations)
		}

		if poll := outcome.Poll; poll != nil && !poll.Skipped {
			r.writePlain("Latest status: %s\n", poll.Status)
		}
	}

	return err
}

// SyncPoll refreshes a sync record from its remote batch job.
func (r *Runner) SyncPoll(ctx context.Context, cmd *cli.Command) error {
	syncID, err := guidArg(cmd, "sync-id")
	if err != nil {
		return err
	}

	target := models.EntityReference{LogicalName: models.SyncSchema.LogicalName, ID: syncID}
	asJSON := cmd.Bool("json")

	r.logger.Info("polling sync record", "id", syncID)
	outcome, err := r.dispatch(ctx, target, false, asJSON)

	if asJSON {
		return r.writeOutcome(target, outcome, err)
	}
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Batch Status")
	r.printRecord(outcome.Poll.Record)
	return nil
}

// SyncList prints sync records in the requested format, or writes them to --output.
func (r *Runner) SyncList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	criteria := map[string]any{
		models.SyncSchema.MarketingList.String(): cmd.String("list"),
		models.SyncSchema.Status.String():        cmd.String("status"),
	}
	records, err := repositories.NewSyncRecordRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteExport(format, records, output)
		if err != nil {
			return err
		}
		r.logger.Info("sync records exported", "path", path, "count", len(records))
		r.writePlain("✓ Wrote %d sync records to %s\n", len(records), path)
		return nil
	}

	data, err := formatter.Render(format, records)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

func (r *Runner) printRecord(rec *models.SyncRecord) {
	if rec == nil {
		return
	}
	r.writePlain("Sync record: %s\n", rec.ID())
	r.writePlain("Batch: %s\n", rec.BatchID)
	r.writePlain("Status: %s\n", rec.Status)
	r.writePlain("Submitted: %s\n", formatter.FormatTime(rec.SubmittedAt))
	r.writePlain("Completed: %s\n", formatter.FormatTime(rec.CompletedAt))
	r.writePlain("Operations: %d finished, %d errored of %d\n", rec.FinishedOperations, rec.ErroredOperations, rec.TotalOperations)
}

// writeOutcome prints the outcome as JSON. A failed dispatch is reported in the body and returned.
func (r *Runner) writeOutcome(target models.EntityReference, outcome *tasks.Outcome, err error) error {
	view := syncView{Target: target.String()}

	if outcome != nil {
		view.Outputs = outcome.Outputs
		switch {
		case outcome.Poll != nil && outcome.Poll.Record != nil:
			row := formatter.NewSyncRow(outcome.Poll.Record)
			view.Batch = &row
		case outcome.Push != nil && outcome.Push.Record != nil:
			row := formatter.NewSyncRow(outcome.Push.Record)
			view.Batch = &row
		}
		view.Skipped = (outcome.Push != nil && outcome.Push.Skipped) || (outcome.Poll != nil && outcome.Poll.Skipped)
	}
	if err != nil {
		view.Error = err.Error()
	}

	if werr := r.writeJSON(view, true); werr != nil {
		return werr
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
