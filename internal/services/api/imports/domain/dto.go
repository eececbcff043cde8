// Package domain holds DTOs for the imports http and service contracts
package domain

import (
	"encoding/json"
	"time"
)

// EnqueueInput asks for a feed import of one merchant
type EnqueueInput struct {
	MerchantID string `json:"merchant_id" validate:"required,min=1,max=64,printascii" example:"m-1001"`
	Variant    string `json:"variant" validate:"required,oneof=PRIMARY_IMPORT UNMATCHED_REPROCESS primary unmatched" example:"PRIMARY_IMPORT"` //nolint:lll
}

// JobView is the wire view of an import job
type JobView struct {
	ID         string     `json:"id" example:"6f1c2b9e-4d1a-4f0e-9b7a-2f3c1d5e8a90"`
	MerchantID string     `json:"merchant_id" example:"m-1001"`
	Variant    string     `json:"variant" example:"PRIMARY_IMPORT"`
	Status     string     `json:"status" example:"queued"`
	Attempts   int        `json:"attempts" example:"1"`
	StatsID    *int64     `json:"stats_id,omitempty" example:"501"`
	LastError  string     `json:"last_error,omitempty" example:"command 'curl' failed with exit code 6"`
	ErrorKind  string     `json:"error_kind,omitempty" example:"network_failure"`
	Retryable  bool       `json:"retryable,omitempty" example:"true"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StatsView is the persisted outcome of an import attempt
type StatsView struct {
	ID                    int64      `json:"id" example:"501"`
	MerchantID            string     `json:"merchant_id" example:"m-1001"`
	Kind                  string     `json:"kind" example:"primary"`
	Processed             int64      `json:"processed" example:"1200"`
	Failed                int64      `json:"failed" example:"3"`
	SuccessfullyProcessed bool       `json:"successfully_processed" example:"true"`
	CriticalErrors        []string   `json:"critical_errors"`
	AbortCode             string     `json:"abort_code,omitempty" example:"invalid_feed"`
	FinishedAt            *time.Time `json:"finished_at,omitempty"`
}

// ErrorsQuery pages the error log of an import
type ErrorsQuery struct {
	Cursor string
	Limit  int
}

// ErrorRow is one logged row failure
type ErrorRow struct {
	ID        int64           `json:"id" example:"88"`
	OfferID   string          `json:"offer_id,omitempty" example:"a-2"`
	Line      int             `json:"line" example:"3"`
	Message   string          `json:"message" example:"title is required"`
	Context   json.RawMessage `json:"context,omitempty" swaggertype:"object"`
	CreatedAt time.Time       `json:"created_at"`
}

// ErrorPage is one page of the error log
type ErrorPage struct {
	Items      []ErrorRow
	Total      int
	Limit      int
	NextCursor string
}
