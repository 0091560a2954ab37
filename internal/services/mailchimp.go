// Mailchimp batch endpoint client
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// DefaultBatchTimeout bounds a batch submission.
const DefaultBatchTimeout = 60 * time.Second

// Credentials authenticate against the batch endpoint.
type Credentials struct {
	Username string
	APIKey   string
	BaseURL  string
}

// CredentialsFrom extracts the fields used on the wire. The stored password is never sent.
func CredentialsFrom(cfg *models.Configuration) Credentials {
	return Credentials{Username: cfg.Username, APIKey: cfg.APIKey, BaseURL: cfg.URL}
}

// AuthorizationHeader returns the HTTP basic credentials built from username and api key.
func (c Credentials) AuthorizationHeader() string {
	token := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.APIKey))
	return "Basic " + token
}

// BatchURL returns the address of a single batch job.
func (c Credentials) BatchURL(batchID string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + batchID
}

// MailchimpService submits and inspects batch jobs.
type MailchimpService struct {
	httpClient   *http.Client
	batchTimeout time.Duration
}

// NewMailchimpService creates a client. A nil client falls back to [http.DefaultClient] and a
// non-positive timeout to [DefaultBatchTimeout].
func NewMailchimpService(client *http.Client, batchTimeout time.Duration) *MailchimpService {
	if client == nil {
		client = http.DefaultClient
	}
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}

	return &MailchimpService{httpClient: client, batchTimeout: batchTimeout}
}

// BatchTimeout is the deadline applied to [MailchimpService.CreateBatch].
func (s *MailchimpService) BatchTimeout() time.Duration { return s.batchTimeout }

// CreateBatch POSTs the encoded batch to the base URL and decodes the created job.
func (s *MailchimpService) CreateBatch(ctx context.Context, creds Credentials, payload []byte) (*BatchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrRemoteCall, err)
	}

	req.Header.Set("Authorization", creds.AuthorizationHeader())
	req.Header.Set("Content-Type", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}
	return DecodeBatchResponse(body)
}

// GetBatch fetches the current state of a batch job. Only the client's own timeout applies.
func (s *MailchimpService) GetBatch(ctx context.Context, creds Credentials, batchID string) (*BatchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, creds.BatchURL(batchID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrRemoteCall, err)
	}

	req.Header.Set("Authorization", creds.AuthorizationHeader())
	req.Header.Set("Accept", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}
	return DecodeBatchResponse(body)
}

func (s *MailchimpService) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrRemoteCall, req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrRemoteCall, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned %d: %s",
			shared.ErrRemoteCall, req.Method, req.URL.Redacted(), resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
