package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

// PushResult is the outcome of a push.
type PushResult struct {
	Skipped    bool               // target was not a list, or the list type is not recognized
	Operations int                // operations submitted
	Record     *models.SyncRecord // created sync record
}

// InitiatorOpts wires an [Initiator]. Location reads zone-less remote timestamps; nil means local time.
type InitiatorOpts struct {
	Lists    ListStore
	Members  MemberStore
	Configs  ConfigurationStore
	Syncs    SyncStore
	Client   BatchClient
	Location *time.Location
}

// Initiator pushes the members of a marketing list to the remote list as one batch job
// and records the job as a new sync record.
type Initiator struct {
	lists    ListStore
	members  MemberStore
	configs  ConfigurationStore
	syncs    SyncStore
	client   BatchClient
	location *time.Location
}

func NewInitiator(opts InitiatorOpts) *Initiator {
	return &Initiator{
		lists:    opts.Lists,
		members:  opts.Members,
		configs:  opts.Configs,
		syncs:    opts.Syncs,
		client:   opts.Client,
		location: locationOrLocal(opts.Location),
	}
}

// Execute runs the push for ec.Target.
//
// Targets that are not marketing lists and lists with an unrecognized member type code are skipped
// without error. Every failure is an [*ExecutionError]; nothing is written unless the remote call succeeds.
func (i *Initiator) Execute(ctx context.Context, ec *ExecutionContext) (*PushResult, error) {
	logger := ec.logger("initiator")

	if !ec.Target.Is(models.ListSchema.LogicalName) {
		logger.Debug("target is not a marketing list, skipping")
		return &PushResult{Skipped: true}, nil
	}

	sendProgress(ec.Progress, loadListUpdate(ec.Target.ID))
	list, err := i.lists.Get(ec.Target.ID)
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not load the marketing list", err)
	}

	if list.ExternalListID == "" {
		return nil, fail(logger, shared.ErrMissingExternalListID, "The marketing list has no Mailchimp list id", nil)
	}

	kind := list.MemberType()
	switch kind {
	case models.MemberTypeAccount:
		return nil, fail(logger, shared.ErrUnsupportedMemberType,
			"Account marketing lists cannot be synced because accounts have no email address", nil)
	case models.MemberTypeContact, models.MemberTypeLead:
		logger.Info("retrieving members", "type", kind)
	default:
		logger.Warn("unrecognized member type code, skipping", "code", int(list.CreatedFromCode))
		return &PushResult{Skipped: true}, nil
	}

	sendProgress(ec.Progress, queryMembersUpdate(list))
	members, err := i.members.ListByMarketingList(list.ID(), kind)
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not retrieve list members", err)
	}
	logger.Info("members with email address", "count", len(members))

	if len(members) == 0 {
		return nil, fail(logger, shared.ErrNoMembersFound,
			"No members were retrieved. Add members with an email address to the list", nil)
	}

	sendProgress(ec.Progress, buildBatchUpdate(len(members)))
	batch, err := services.BuildBatchRequest(list.ExternalListID, members)
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not build the batch request", err)
	}

	payload, err := services.EncodeBatchRequest(batch)
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not encode the batch request", err)
	}
	logger.Debug("batch payload", "operations", len(batch.Operations), "bytes", len(payload))

	sendProgress(ec.Progress, resolveConfigUpdate(4, pushSteps))
	cfg, err := i.configs.Latest(true)
	if errors.Is(err, shared.ErrRecordNotFound) {
		return nil, fail(logger, shared.ErrMissingConfiguration,
			"No complete Mailchimp configuration exists. Create one with username, password, api key and url", nil)
	}
	if err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not load the Mailchimp configuration", err)
	}

	sendProgress(ec.Progress, submitBatchUpdate(len(batch.Operations)))
	resp, err := i.client.CreateBatch(ctx, services.CredentialsFrom(cfg), payload)
	if err != nil {
		return nil, fail(logger, remoteKind(err), "The batch request failed", err)
	}

	rec := models.NewSyncRecord(0, list.ID())
	if err := resp.Apply(rec, i.location); err != nil {
		return nil, fail(logger, shared.ErrResponseParse, "Could not read the batch response", err)
	}

	if err := i.syncs.Create(rec); err != nil {
		return nil, fail(logger, shared.ErrUpstreamFault, "Could not create the sync record", err)
	}

	logger.Info("batch created", "batch", rec.BatchID, "status", rec.Status, "sync", rec.ID())
	sendProgress(ec.Progress, recordSyncUpdate(rec))

	return &PushResult{Operations: len(batch.Operations), Record: rec}, nil
}

// remoteKind classifies a client error.
func remoteKind(err error) error {
	if errors.Is(err, shared.ErrResponseParse) {
		return shared.ErrResponseParse
	}
	return shared.ErrRemoteCall
}
