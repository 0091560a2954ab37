package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

type fakeLists map[string]*models.MarketingList

func (f fakeLists) Get(id string) (*models.MarketingList, error) {
	list, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: marketing list %s", shared.ErrRecordNotFound, id)
	}
	return list, nil
}

type fakeMembers struct {
	members []models.Member
	err     error
	calls   int
}

func (f *fakeMembers) ListByMarketingList(listID string, kind models.MemberType) ([]models.Member, error) {
	f.calls++
	return f.members, f.err
}

type fakeConfigs struct {
	complete  *models.Configuration
	latest    *models.Configuration
	err       error
	requested []bool
}

func (f *fakeConfigs) Latest(requireComplete bool) (*models.Configuration, error) {
	f.requested = append(f.requested, requireComplete)
	if f.err != nil {
		return nil, f.err
	}

	cfg := f.latest
	if requireComplete {
		cfg = f.complete
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: no active configuration", shared.ErrRecordNotFound)
	}
	return cfg, nil
}

type fakeSyncs struct {
	records map[string]*models.SyncRecord
	created []*models.SyncRecord
	updated []*models.SyncRecord
	err     error
}

func newFakeSyncs(records ...*models.SyncRecord) *fakeSyncs {
	f := &fakeSyncs{records: map[string]*models.SyncRecord{}}
	for _, rec := range records {
		f.records[rec.ID()] = rec
	}
	return f
}

func (f *fakeSyncs) Create(rec *models.SyncRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.SetID(fmt.Sprintf("sync-%d", len(f.created)+1))
	f.created = append(f.created, rec)
	f.records[rec.ID()] = rec
	return nil
}

func (f *fakeSyncs) Get(id string) (*models.SyncRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: sync record %s", shared.ErrRecordNotFound, id)
	}
	return rec, nil
}

func (f *fakeSyncs) Update(rec *models.SyncRecord) error {
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, rec)
	f.records[rec.ID()] = rec
	return nil
}

type fakeClient struct {
	created  *services.BatchResponse
	fetched  *services.BatchResponse
	err      error
	payloads [][]byte
	creds    []services.Credentials
	batchIDs []string
}

func (f *fakeClient) CreateBatch(_ context.Context, creds services.Credentials, payload []byte) (*services.BatchResponse, error) {
	f.payloads = append(f.payloads, payload)
	f.creds = append(f.creds, creds)
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

func (f *fakeClient) GetBatch(_ context.Context, creds services.Credentials, batchID string) (*services.BatchResponse, error) {
	f.batchIDs = append(f.batchIDs, batchID)
	f.creds = append(f.creds, creds)
	if f.err != nil {
		return nil, f.err
	}
	return f.fetched, nil
}

func (f *fakeClient) calls() int { return len(f.payloads) + len(f.batchIDs) }

type fixture struct {
	list    *models.MarketingList
	lists   fakeLists
	members *fakeMembers
	configs *fakeConfigs
	syncs   *fakeSyncs
	client  *fakeClient
	logs    *bytes.Buffer
}

func newFixture(code models.MemberTypeCode, externalID string) *fixture {
	list := models.NewMarketingList(1, "Newsletter", externalID, code)
	list.SetID("11111111-1111-1111-1111-111111111111")

	cfg := models.NewConfiguration(1, "user", "secret", "key-us1", "https://us1.api.mailchimp.com/3.0/batches")

	return &fixture{
		list:  list,
		lists: fakeLists{list.ID(): list},
		members: &fakeMembers{members: []models.Member{
			{ID: "c2", FirstName: "Grace", LastName: "Hopper", EmailAddress: "grace@example.com"},
			{ID: "c1", EmailAddress: "ada@example.com"},
		}},
		configs: &fakeConfigs{complete: cfg, latest: cfg},
		syncs:   newFakeSyncs(),
		client: &fakeClient{
			created: &services.BatchResponse{ID: "b1", Status: "pending", TotalOperations: 2, SubmittedAt: "01/15/2024 10:30:00"},
			fetched: &services.BatchResponse{ID: "b1", Status: "finished", TotalOperations: 2, FinishedOperations: 2, CompletedAt: "2024-01-15T11:00:00+00:00"},
		},
		logs: &bytes.Buffer{},
	}
}

func (f *fixture) initiator() *Initiator {
	return NewInitiator(InitiatorOpts{
		Lists:    f.lists,
		Members:  f.members,
		Configs:  f.configs,
		Syncs:    f.syncs,
		Client:   f.client,
		Location: time.UTC,
	})
}

func (f *fixture) poller() *Poller {
	return NewPoller(PollerOpts{Configs: f.configs, Syncs: f.syncs, Client: f.client, Location: time.UTC})
}

func (f *fixture) context(target models.EntityReference) *ExecutionContext {
	return NewExecutionContext(target, log.New(f.logs))
}

func requireKind(t *testing.T, err error, kind error) *ExecutionError {
	t.Helper()

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.ErrorIs(t, err, kind)
	assert.Equal(t, kind, execErr.Kind)
	assert.NotEmpty(t, execErr.Message)
	return execErr
}

func TestInitiator(t *testing.T) {
	t.Run("Skips Other Targets", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")

		result, err := f.initiator().Execute(context.Background(), f.context(models.EntityReference{LogicalName: "contact", ID: "x"}))
		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Zero(t, f.members.calls)
		assert.Zero(t, f.client.calls())
	})

	t.Run("Missing External List ID", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "")

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrMissingExternalListID)
		assert.Zero(t, f.members.calls)
		assert.Zero(t, f.client.calls())
	})

	t.Run("Account List", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeAccount, "abc123")

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrUnsupportedMemberType)
		assert.Zero(t, f.members.calls)
	})

	t.Run("Unknown Member Type", func(t *testing.T) {
		f := newFixture(models.MemberTypeCode(8), "abc123")

		result, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Zero(t, f.members.calls)
		assert.Zero(t, f.client.calls())
		assert.Empty(t, f.syncs.created)
	})

	t.Run("Missing List", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")

		_, err := f.initiator().Execute(context.Background(), f.context(models.EntityReference{LogicalName: "list", ID: "missing"}))
		requireKind(t, err, shared.ErrUpstreamFault)
		assert.ErrorIs(t, err, shared.ErrRecordNotFound)
	})

	t.Run("No Members", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeLead, "abc123")
		f.members.members = nil

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrNoMembersFound)
		assert.Empty(t, f.syncs.created, "no sync record may be created")
		assert.Zero(t, f.client.calls())
	})

	t.Run("Incomplete Configuration", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.configs.complete = nil

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrMissingConfiguration)
		assert.Equal(t, []bool{true}, f.configs.requested)
		assert.Zero(t, f.client.calls(), "no HTTP request without configuration")
		assert.Empty(t, f.syncs.created)
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		progress := make(chan ProgressUpdate, 16)
		ec := f.context(f.list.Reference())
		ec.Progress = progress

		result, err := f.initiator().Execute(context.Background(), ec)
		require.NoError(t, err)
		assert.False(t, result.Skipped)
		assert.Equal(t, 2, result.Operations)

		require.Len(t, f.client.payloads, 1)
		payload := f.client.payloads[0]
		assert.Equal(t, "lists/abc123/members", gjson.GetBytes(payload, "operations.0.path").String())
		assert.Equal(t, "grace@example.com", gjson.Get(gjson.GetBytes(payload, "operations.0.body").String(), "email_address").String())
		assert.Equal(t, "ada@example.com", gjson.Get(gjson.GetBytes(payload, "operations.1.body").String(), "email_address").String())

		assert.Equal(t, services.Credentials{Username: "user", APIKey: "key-us1", BaseURL: "https://us1.api.mailchimp.com/3.0/batches"}, f.client.creds[0])

		require.Len(t, f.syncs.created, 1)
		rec := f.syncs.created[0]
		assert.Same(t, rec, result.Record)
		assert.Equal(t, "b1", rec.BatchID)
		assert.Equal(t, "pending", rec.Status)
		assert.Equal(t, 2, rec.TotalOperations)
		assert.Equal(t, f.list.ID(), rec.MarketingListID)
		require.NotNil(t, rec.SubmittedAt)
		assert.True(t, rec.SubmittedAt.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))

		close(progress)
		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}
		assert.Equal(t, []Phase{LoadList, QueryMembers, BuildBatch, ResolveConfig, SubmitBatch, RecordSync}, phases)
	})

	t.Run("Remote Failure", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.client.err = fmt.Errorf("%w: 401", shared.ErrRemoteCall)

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrRemoteCall)
		assert.Empty(t, f.syncs.created)
		assert.Contains(t, f.logs.String(), "The batch request failed")
	})

	t.Run("Parse Failure", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.client.err = fmt.Errorf("%w: empty batch response", shared.ErrResponseParse)

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrResponseParse)
		assert.Empty(t, f.syncs.created)
	})

	t.Run("Store Failure", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.syncs.err = errors.New("disk full")

		_, err := f.initiator().Execute(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrUpstreamFault)
	})
}

func TestPoller(t *testing.T) {
	existing := func() *models.SyncRecord {
		rec := models.NewSyncRecord(1, "11111111-1111-1111-1111-111111111111")
		rec.SetID("22222222-2222-2222-2222-222222222222")
		rec.BatchID = "b1"
		rec.Status = "pending"
		rec.TotalOperations = 2
		return rec
	}

	t.Run("Skips Other Targets", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		ec := f.context(f.list.Reference())

		result, err := f.poller().Execute(context.Background(), ec)
		require.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Zero(t, f.client.calls())
		assert.Empty(t, ec.Outputs)
	})

	t.Run("Missing Batch ID", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		rec := existing()
		rec.BatchID = ""
		f.syncs = newFakeSyncs(rec)

		_, err := f.poller().Execute(context.Background(), f.context(rec.Reference()))
		requireKind(t, err, shared.ErrMissingBatchID)
		assert.Zero(t, f.client.calls(), "no HTTP request without batch id")
		assert.Empty(t, f.configs.requested)
	})

	t.Run("Uses Latest Configuration", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.configs.complete = nil
		f.configs.latest = models.NewConfiguration(2, "other", "", "key-us2", "https://us2.api.mailchimp.com/3.0/batches")
		rec := existing()
		f.syncs = newFakeSyncs(rec)

		_, err := f.poller().Execute(context.Background(), f.context(rec.Reference()))
		require.NoError(t, err)
		assert.Equal(t, []bool{false}, f.configs.requested)
		assert.Equal(t, "other", f.client.creds[0].Username)
	})

	t.Run("Missing Configuration", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.configs.latest = nil
		rec := existing()
		f.syncs = newFakeSyncs(rec)

		_, err := f.poller().Execute(context.Background(), f.context(rec.Reference()))
		requireKind(t, err, shared.ErrMissingConfiguration)
		assert.Zero(t, f.client.calls())
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		rec := existing()
		f.syncs = newFakeSyncs(rec)
		ec := f.context(rec.Reference())

		result, err := f.poller().Execute(context.Background(), ec)
		require.NoError(t, err)

		assert.Equal(t, []string{"b1"}, f.client.batchIDs)
		assert.Equal(t, "finished", result.Status)
		require.Len(t, f.syncs.updated, 1)
		assert.Equal(t, rec.ID(), f.syncs.updated[0].ID(), "record is updated in place")
		assert.Equal(t, 2, rec.FinishedOperations)
		require.NotNil(t, rec.CompletedAt)
		assert.True(t, rec.CompletedAt.Equal(time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)))
		assert.Equal(t, "finished", ec.Outputs["MailChimpStatus"])
	})

	t.Run("Null Response", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.client.err = fmt.Errorf("%w: empty batch response", shared.ErrResponseParse)
		rec := existing()
		f.syncs = newFakeSyncs(rec)

		_, err := f.poller().Execute(context.Background(), f.context(rec.Reference()))
		requireKind(t, err, shared.ErrResponseParse)
		assert.Empty(t, f.syncs.updated)
	})
}

func TestDispatcher(t *testing.T) {
	t.Run("Chains Poll", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		d := NewDispatcher(f.initiator(), f.poller(), true)

		outcome, err := d.Dispatch(context.Background(), f.context(f.list.Reference()))
		require.NoError(t, err)
		require.NotNil(t, outcome.Push)
		require.NotNil(t, outcome.Poll)

		assert.Len(t, f.client.payloads, 1)
		assert.Equal(t, []string{"b1"}, f.client.batchIDs)
		assert.Equal(t, "finished", outcome.Outputs["MailChimpStatus"])
		assert.Same(t, outcome.Push.Record, outcome.Poll.Record)
	})

	t.Run("Without Chaining", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		d := NewDispatcher(f.initiator(), f.poller(), false)

		outcome, err := d.Dispatch(context.Background(), f.context(f.list.Reference()))
		require.NoError(t, err)
		assert.NotNil(t, outcome.Push)
		assert.Nil(t, outcome.Poll)
		assert.Empty(t, f.client.batchIDs)
	})

	t.Run("Chained Poll Failure", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		f.configs.latest = nil
		d := NewDispatcher(f.initiator(), f.poller(), true)

		outcome, err := d.Dispatch(context.Background(), f.context(f.list.Reference()))
		requireKind(t, err, shared.ErrMissingConfiguration)
		require.NotNil(t, outcome)
		assert.NotNil(t, outcome.Push.Record)
	})

	t.Run("Poll", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		rec := models.NewSyncRecord(1, f.list.ID())
		rec.SetID("sync-9")
		rec.BatchID = "b1"
		f.syncs = newFakeSyncs(rec)
		d := NewDispatcher(f.initiator(), f.poller(), true)

		outcome, err := d.Dispatch(context.Background(), f.context(rec.Reference()))
		require.NoError(t, err)
		assert.Nil(t, outcome.Push)
		assert.Equal(t, "finished", outcome.Poll.Status)
	})

	t.Run("Unknown Target", func(t *testing.T) {
		f := newFixture(models.MemberTypeCodeContact, "abc123")
		d := NewDispatcher(f.initiator(), f.poller(), true)

		assert.False(t, d.Handles("contact"))
		assert.True(t, d.Handles("list"))

		_, err := d.Dispatch(context.Background(), f.context(models.EntityReference{LogicalName: "contact", ID: "x"}))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestExecutionError(t *testing.T) {
	cause := errors.New("boom")
	err := &ExecutionError{Kind: shared.ErrRemoteCall, Message: "The batch request failed", Err: cause}

	assert.Equal(t, "The batch request failed: boom", err.Error())
	assert.ErrorIs(t, err, shared.ErrRemoteCall)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "No members", (&ExecutionError{Kind: shared.ErrNoMembersFound, Message: "No members"}).Error())
}

func TestSendProgress(t *testing.T) {
	sendProgress(nil, ProgressUpdate{})

	full := make(chan ProgressUpdate)
	done := make(chan struct{})
	go func() {
		sendProgress(full, ProgressUpdate{Phase: LoadList})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendProgress blocked on a full channel")
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "submit_batch", SubmitBatch.String())
	assert.Equal(t, "update_sync", UpdateSync.String())
	assert.Equal(t, "", Phase(99).String())
}
