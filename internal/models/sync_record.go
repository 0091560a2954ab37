package models

import (
	"fmt"
	"time"
)

// SyncRecord mirrors the latest known state of one remote batch job.
type SyncRecord struct {
	record
	BatchID            string
	Status             string
	SubmittedAt        *time.Time
	CompletedAt        *time.Time
	TotalOperations    int
	FinishedOperations int
	ErroredOperations  int
	MarketingListID    string
}

// NewSyncRecord creates an unsaved sync record linked to a marketing list.
func NewSyncRecord(sequence int, marketingListID string) *SyncRecord {
	return &SyncRecord{record: newRecord(sequence), MarketingListID: marketingListID}
}

// Reference returns the trigger reference for this record.
func (s *SyncRecord) Reference() EntityReference {
	return EntityReference{LogicalName: SyncSchema.LogicalName, ID: s.ID()}
}

// HasMarketingList reports whether the record is linked to a list.
func (s *SyncRecord) HasMarketingList() bool { return s.MarketingListID != "" }

// Validate rejects negative operation counts.
func (s *SyncRecord) Validate() error {
	if s.TotalOperations < 0 || s.FinishedOperations < 0 || s.ErroredOperations < 0 {
		return fmt.Errorf("operation counts must not be negative")
	}
	return nil
}
