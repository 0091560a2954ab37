// Batch payload codec for the Mailchimp batch operations endpoint
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// SubscribedStatus is the membership status every pushed member is created with.
const SubscribedStatus = "subscribed"

// Operation is one sub-request of a batch.
//
// Body holds the member payload as a JSON string, not a nested object.
type Operation struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Body   string `json:"body"`
}

// BatchRequest is the document POSTed to the batch endpoint.
type BatchRequest struct {
	Operations []Operation `json:"operations"`
}

// MergeFields carries the optional name fields of a member.
type MergeFields struct {
	FirstName string `json:"FNAME,omitempty"`
	LastName  string `json:"LNAME,omitempty"`
}

// MemberPayload is the body of a single list member creation.
type MemberPayload struct {
	EmailAddress string       `json:"email_address"`
	Status       string       `json:"status"`
	MergeFields  *MergeFields `json:"merge_fields,omitempty"`
}

// NewMemberPayload builds the subscription body for m. merge_fields is omitted when both names are empty.
func NewMemberPayload(m models.Member) MemberPayload {
	payload := MemberPayload{EmailAddress: m.EmailAddress, Status: SubscribedStatus}
	if m.FirstName != "" || m.LastName != "" {
		payload.MergeFields = &MergeFields{FirstName: m.FirstName, LastName: m.LastName}
	}
	return payload
}

// MembersPath is the batch operation path that creates members on an external list.
func MembersPath(listID string) string {
	return "lists/" + listID + "/members"
}

// marshal encodes v like json.Marshal but leaves <, > and & unescaped.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// BuildBatchRequest creates one POST operation per member, preserving member order.
func BuildBatchRequest(listID string, members []models.Member) (*BatchRequest, error) {
	if len(members) == 0 {
		return nil, shared.ErrNoMembersFound
	}

	var encodeErr error
	operations := lo.Map(members, func(m models.Member, _ int) Operation {
		body, err := marshal(NewMemberPayload(m))
		if err != nil && encodeErr == nil {
			encodeErr = err
		}
		return Operation{Method: "POST", Path: MembersPath(listID), Body: string(body)}
	})
	if encodeErr != nil {
		return nil, fmt.Errorf("failed to encode member payload: %w", encodeErr)
	}

	return &BatchRequest{Operations: operations}, nil
}

// EncodeBatchRequest serializes the batch request for the wire.
func EncodeBatchRequest(req *BatchRequest) ([]byte, error) {
	data, err := marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch request: %w", err)
	}
	return data, nil
}

// DecodeBatchRequest parses a serialized batch request.
func DecodeBatchRequest(data []byte) (*BatchRequest, error) {
	var req BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode batch request: %w", err)
	}
	return &req, nil
}

// Link is a hypermedia link returned alongside a batch.
type Link struct {
	Rel          string `json:"rel"`
	Href         string `json:"href"`
	Method       string `json:"method"`
	TargetSchema string `json:"targetSchema,omitempty"`
	Schema       string `json:"schema,omitempty"`
}

// BatchResponse is the state of a remote batch job. Every field is optional on the wire.
type BatchResponse struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	TotalOperations    int    `json:"total_operations"`
	FinishedOperations int    `json:"finished_operations"`
	ErroredOperations  int    `json:"errored_operations"`
	SubmittedAt        string `json:"submitted_at"`
	CompletedAt        string `json:"completed_at"`
	ResponseBodyURL    string `json:"response_body_url"`
	Links              []Link `json:"_links"`
}

// DecodeBatchResponse parses a batch job document.
//
// Empty, null and malformed input all fail with [shared.ErrResponseParse].
func DecodeBatchResponse(data []byte) (*BatchResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty batch response", shared.ErrResponseParse)
	}

	var resp BatchResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrResponseParse, err)
	}
	return &resp, nil
}

// Apply copies the batch state onto rec.
//
// Id and status are only copied when present, timestamps only when they parse.
// Operation counts are always copied. Zone-less timestamps are read in loc.
func (b *BatchResponse) Apply(rec *models.SyncRecord, loc *time.Location) error {
	if b.ID != "" {
		rec.BatchID = b.ID
	}
	if b.Status != "" {
		rec.Status = b.Status
	}

	if b.SubmittedAt != "" {
		t, err := ParseUSTime(b.SubmittedAt, loc)
		if err != nil {
			return err
		}
		rec.SubmittedAt = &t
	}
	if b.CompletedAt != "" {
		t, err := ParseUSTime(b.CompletedAt, loc)
		if err != nil {
			return err
		}
		rec.CompletedAt = &t
	}

	rec.TotalOperations = b.TotalOperations
	rec.FinishedOperations = b.FinishedOperations
	rec.ErroredOperations = b.ErroredOperations
	return nil
}

// ParseUSTime parses a timestamp with month-first ordering for ambiguous dates and returns it in UTC.
func ParseUSTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	t, err := dateparse.ParseIn(strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q: %v", shared.ErrResponseParse, value, err)
	}
	return t.UTC(), nil
}
