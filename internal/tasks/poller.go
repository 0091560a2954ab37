package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

// PollResult is the outcome of a poll.
type PollResult struct {
	Skipped bool
	Status  string
	Record  *models.SyncRecord
}

// PollerOpts wires a [Poller].
type PollerOpts struct {
	Configs  ConfigurationStore
	Syncs    SyncStore
	Client   BatchClient
	Location *time.Location
}

// Poller refreshes a sync record from the remote batch job it tracks.
type Poller struct {
	configs  ConfigurationStore
	syncs    SyncStore
	client   BatchClient
	location *time.Location
}

func NewPoller(opts PollerOpts) *Poller {
	return &Poller{
		configs:  opts.Configs,
		syncs:    opts.Syncs,
		client:   opts.Client,
		location: locationOrLocal(opts.Location),
	}
}

// Execute runs the poll for ec.Target and writes the batch status to the
// [models.SyncSchema] StatusOutput parameter.
//
// The configuration is the latest record regardless of completeness.
func (p *Poller) Execute(ctx context.Context, ec *ExecutionContext) (*PollResult, error) {
	logger := ec.logger("poller")

	if !ec.Target.Is(models.SyncSchema.LogicalName) {
		logger.Debug("target is not a sync record, skipping")
		return &PollResult{Skipped: true}, nil
	}

	sendProgress(ec.Progress, loadSyncUpdate(ec.Target.ID))
	rec, err := p.syncs.Get(ec.Target.ID)
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not load the sync record", err)
	}

	if rec.BatchID == "" {
		return nil, fail(logger, shared.ErrMissingBatchID, "The sync record has no batch id", nil)
	}
	if rec.HasMarketingList() {
		logger = logger.With("list", rec.MarketingListID)
	}

	sendProgress(ec.Progress, resolveConfigUpdate(2, pollSteps))
	cfg, err := p.configs.Latest(false)
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, fail(logger, shared.ErrMissingConfiguration, "No Mailchimp configuration exists", nil)
	}
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not load the Mailchimp configuration", err)
	}

	sendProgress(ec.Progress, fetchBatchUpdate(rec.BatchID))
	resp, err := p.client.GetBatch(ctx, services.CredentialsFrom(cfg), rec.BatchID)
	if err != nil {
		return nil, fail(logger, remoteKind(err), "The batch status request failed", err)
	}

	if err := resp.Apply(rec, p.location); err != nil {
		return nil, fail(logger, shared.ErrResponseParse, "Could not read the batch response", err)
	}

	if err := p.syncs.Update(rec); err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not update the sync record", err)
	}

	ec.SetOutput(models.SyncSchema.StatusOutput, rec.Status)
	logger.Info("batch status", "batch", rec.BatchID, "status", rec.Status,
		"finished", rec.FinishedOperations, "errored", rec.ErroredOperations)
	sendProgress(ec.Progress, updateSyncUpdate(rec))

	return &PollResult{Status: rec.Status, Record: rec}, nil
}
