package domain

import (
	"context"
	"time"
)

// Executor runs a stage plan; a failing stage is reported as *StageFailure
type Executor interface {
	Execute(ctx context.Context, plan StagePlan, params ParameterSet) error
}

// TransportProbe detects transport level gzip encoding of a feed url
type TransportProbe interface {
	IsGzipEncoded(ctx context.Context, rawURL string) (bool, error)
}

// ConfigRepo loads merchant feed configuration
type ConfigRepo interface {
	FeedConfig(ctx context.Context, merchantID string) (*FeedConfig, error)
}

// JobRepo is the import job queue
type JobRepo interface {
	Enqueue(ctx context.Context, merchantID string, v Variant) (ImportJob, error)
	Lease(ctx context.Context, workerID string, limit int, leaseFor time.Duration) ([]ImportJob, error)
	Start(ctx context.Context, jobID string, statsID int64) error
	Complete(ctx context.Context, jobID string) error
	Fail(ctx context.Context, jobID, msg, kind string, retryable bool) error
	Get(ctx context.Context, jobID string) (ImportJob, error)
}

// StatsCreator opens the statistics record for an import attempt
type StatsCreator interface {
	CreateStats(ctx context.Context, merchantID string, v Variant) (StatsRef, error)
}

// EnqueuePort enqueues imports for the worker
type EnqueuePort interface {
	EnqueueImport(ctx context.Context, merchantID string, v Variant) (ImportJob, error)
	Job(ctx context.Context, jobID string) (ImportJob, error)
}

// ProbePort reports how a merchant feed would be decompressed
type ProbePort interface {
	ProbeMerchant(ctx context.Context, merchantID string) (ProbeResult, error)
}

// WorkerPort runs the import worker loop
type WorkerPort interface {
	Run(ctx context.Context) error
	RunOnce(ctx context.Context, merchantID string, v Variant) error
}

// ImporterPort runs a single import request end to end
type ImporterPort interface {
	Import(ctx context.Context, req *FeedImportRequest) error
}

// StorageRepo is the Postgres surface of the feed import service
type StorageRepo interface {
	ConfigRepo
	JobRepo
	StatsCreator
}
