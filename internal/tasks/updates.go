package tasks

import (
	"fmt"

	"github.com/desertthunder/listsync/internal/models"
)

// ProgressUpdate represents a progress event during a handler run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Handler phase
	Step    int    // Current step number
	Total   int    // Total steps for the handler
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Handler phase enumeration
type Phase int

const (
	LoadList Phase = iota
	QueryMembers
	BuildBatch
	ResolveConfig
	SubmitBatch
	RecordSync
	LoadSync
	FetchBatch
	UpdateSync
)

const (
	pushSteps = 6
	pollSteps = 4
)

func (p Phase) String() string {
	switch p {
	case LoadList:
		return "load_list"
	case QueryMembers:
		return "query_members"
	case BuildBatch:
		return "build_batch"
	case ResolveConfig:
		return "resolve_config"
	case SubmitBatch:
		return "submit_batch"
	case RecordSync:
		return "record_sync"
	case LoadSync:
		return "load_sync"
	case FetchBatch:
		return "fetch_batch"
	case UpdateSync:
		return "update_sync"
	default:
		return ""
	}
}

func loadListUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadList,
		Step:    1,
		Total:   pushSteps,
		Message: fmt.Sprintf("Loading marketing list %s...", id),
	}
}

func queryMembersUpdate(list *models.MarketingList) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueryMembers,
		Step:    2,
		Total:   pushSteps,
		Message: fmt.Sprintf("Retrieving %s members of %s...", list.MemberType(), list.Name),
		Data:    list,
	}
}

func buildBatchUpdate(members int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildBatch,
		Step:    3,
		Total:   pushSteps,
		Message: fmt.Sprintf("Building batch for %d members...", members),
	}
}

func resolveConfigUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveConfig,
		Step:    step,
		Total:   total,
		Message: "Resolving Mailchimp configuration...",
	}
}

func submitBatchUpdate(operations int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitBatch,
		Step:    5,
		Total:   pushSteps,
		Message: fmt.Sprintf("Submitting %d operations...", operations),
	}
}

func recordSyncUpdate(rec *models.SyncRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordSync,
		Step:    6,
		Total:   pushSteps,
		Message: fmt.Sprintf("Batch %s created (%s)", rec.BatchID, rec.Status),
		Data:    rec,
	}
}

func loadSyncUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSync,
		Step:    1,
		Total:   pollSteps,
		Message: fmt.Sprintf("Loading sync record %s...", id),
	}
}

func fetchBatchUpdate(batchID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchBatch,
		Step:    3,
		Total:   pollSteps,
		Message: fmt.Sprintf("Fetching batch %s...", batchID),
	}
}

func updateSyncUpdate(rec *models.SyncRecord) ProgressUpdate {
	msg := fmt.Sprintf("Batch %s is %s (%d/%d finished, %d errored)",
		rec.BatchID, rec.Status, rec.FinishedOperations, rec.TotalOperations, rec.ErroredOperations)

	return ProgressUpdate{
		Phase:   UpdateSync,
		Step:    4,
		Total:   pollSteps,
		Message: msg,
		Data:    rec,
	}
}
