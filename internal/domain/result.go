package domain

import "time"

// ItemStatus is the per-publication outcome within a batch.
type ItemStatus string

const (
	ItemCreated ItemStatus = "created"
	ItemSkipped ItemStatus = "skipped"
	ItemError   ItemStatus = "error"
)

// ItemDetail records the outcome for one publication of a batch.
type ItemDetail struct {
	PublicationID string
	Status        ItemStatus
	Message       string
}

// ProcessingResult aggregates a batch run.
// Invariant: Processed == Created + Skipped + Errors.
type ProcessingResult struct {
	Processed int
	Created   int
	Skipped   int
	Errors    int
	Details   []ItemDetail
}

// ProcessingStats is an advisory snapshot of what ingestion has persisted.
type ProcessingStats struct {
	TotalPublications     int64
	CompletedPublications int64
	PendingPublications   int64
	TotalAuctions         int64
	TotalAuctionObjects   int64
	LastProcessed         *time.Time
}
