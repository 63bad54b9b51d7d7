// Package models defines the rows stored by the bid store.
package models

import (
	"errors"
	"time"

	"github.com/securetender/bidguard/pkg/features"
)

// Alert severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// AlertTypeSuspiciousBid is raised when a scored bid is flagged anomalous.
const AlertTypeSuspiciousBid = "Suspicious Bid"

// Tender is a procurement tender accepting bids.
type Tender struct {
	ID             int64
	Title          string
	Description    string
	Department     string
	EstimatedValue float64
	Deadline       string
	Status         string
	CreatedAt      time.Time
}

// Validate checks the fields required before insertion.
func (t *Tender) Validate() error {
	if t.Title == "" {
		return errors.New("tender title is required")
	}
	if t.EstimatedValue < 0 {
		return errors.New("estimated value must not be negative")
	}
	return nil
}

// Bid is a submitted bid, including the anomaly columns written back after
// scoring.
type Bid struct {
	ID           int64
	TenderID     int64
	CompanyName  string
	ContactEmail string
	BidAmount    float64
	Proposal     string
	SubmittedAt  string
	Status       string
	AnomalyScore float64
	IsSuspicious bool
}

// Validate checks the fields required before insertion.
func (b *Bid) Validate() error {
	if b.CompanyName == "" {
		return errors.New("company name is required")
	}
	if b.BidAmount <= 0 {
		return errors.New("bid amount must be positive")
	}
	return nil
}

// Record converts the stored row into the engine's borrowed input form.
func (b *Bid) Record() features.Record {
	return features.Record{
		ID:           b.ID,
		TenderID:     b.TenderID,
		CompanyName:  b.CompanyName,
		ContactEmail: b.ContactEmail,
		BidAmount:    b.BidAmount,
		Proposal:     b.Proposal,
		SubmittedAt:  b.SubmittedAt,
	}
}

// Records converts a slice of stored bids for a training or scoring call.
func Records(bids []*Bid) []features.Record {
	records := make([]features.Record, len(bids))
	for i, b := range bids {
		records[i] = b.Record()
	}
	return records
}

// Alert is a notification row created when a caller observes a flagged bid.
type Alert struct {
	ID                string
	AlertType         string
	Severity          string
	Message           string
	RelatedEntityType string
	RelatedEntityID   int64
	Status            string
	CreatedAt         time.Time
}

// AuditEntry records an action taken against an entity.
type AuditEntry struct {
	ID         string
	Action     string
	EntityType string
	EntityID   int64
	Details    string
	Timestamp  time.Time
}
