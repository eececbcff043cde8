// Package domain holds the feed import types, ports and typed errors
package domain

import "time"

// Format is the feed payload format
type Format string

const (
	// FormatCSV is a delimited text feed
	FormatCSV Format = "csv"
	// FormatXML is an XML feed converted to rows before processing
	FormatXML Format = "xml"
)

// Compression is the declared or resolved compression of a feed
type Compression string

const (
	// CompressionNone means plain content, or nothing could be resolved
	CompressionNone Compression = "none"
	// CompressionUnknown means compressed but the type has to be guessed from the URL
	CompressionUnknown Compression = "unknown"
	// CompressionGzip is a single gzip stream
	CompressionGzip Compression = "gzip"
	// CompressionZip is a zip archive
	CompressionZip Compression = "zip"
	// CompressionTarGz is a gzipped tar archive
	CompressionTarGz Compression = "tar-gz"
)

// Variant selects what the process stage does with the rows
type Variant string

const (
	// VariantPrimaryImport imports offers and keeps a backup copy of the raw feed
	VariantPrimaryImport Variant = "PRIMARY_IMPORT"
	// VariantUnmatchedReprocess reprocesses offers that did not match a product
	VariantUnmatchedReprocess Variant = "UNMATCHED_REPROCESS"
)

// Valid reports whether v is a known variant
func (v Variant) Valid() bool {
	switch v {
	case VariantPrimaryImport, VariantUnmatchedReprocess:
		return true
	}
	return false
}

// Short is the cli and statistics name of the variant
func (v Variant) Short() string {
	switch v {
	case VariantPrimaryImport:
		return "primary"
	case VariantUnmatchedReprocess:
		return "unmatched"
	}
	return ""
}

// ParseVariant accepts the wire names and the short cli names
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case string(VariantPrimaryImport), "primary":
		return VariantPrimaryImport, true
	case string(VariantUnmatchedReprocess), "unmatched":
		return VariantUnmatchedReprocess, true
	}
	return "", false
}

// ProbeResult is the compression resolved for a merchant feed, including the transport probe
type ProbeResult struct {
	MerchantID  string      `json:"merchant_id" example:"m-1001"`
	URL         string      `json:"url" example:"https://feeds.example.com/m-1001.csv"`
	Declared    Compression `json:"declared" example:"none"`
	Resolved    Compression `json:"resolved" example:"gzip"`
	GzipEncoded bool        `json:"gzip_encoded" example:"true"`
}

// FeedConfig is the merchant feed configuration
type FeedConfig struct {
	URL         string
	Username    string
	Password    string
	Format      Format
	Compressed  bool
	Compression Compression
	XMLEntity   string
	Delimiter   string
	Enclosure   string
}

// StatsRef points at the statistics record of one import attempt
type StatsRef struct {
	ID   int64
	Kind string
}

// FeedImportRequest is one import attempt for one merchant
// the caller owns it; only SuccessfullyProcessed is written by the planner
type FeedImportRequest struct {
	MerchantID string
	URL        string
	Feed       *FeedConfig
	Stats      *StatsRef
	Variant    Variant

	SuccessfullyProcessed bool
}

// StageName names one of the fixed stage groups
type StageName string

const (
	// StageFetch downloads the feed
	StageFetch StageName = "fetch"
	// StageExtract decompresses and optionally backs up the raw bytes
	StageExtract StageName = "extract"
	// StagePreprocess turns the payload into clean rows
	StagePreprocess StageName = "preprocess"
	// StageProcess consumes the rows
	StageProcess StageName = "process"
)

// StageOrder is the only order groups appear in a plan
var StageOrder = [...]StageName{StageFetch, StageExtract, StagePreprocess, StageProcess}

// CommandDefinition is one external command in a stage group
type CommandDefinition struct {
	// Command is a template with {param} placeholders
	Command string
	// Output is an optional file the command's stdout is redirected to
	Output string
	// ExitCodes are treated as success, {0} when empty
	ExitCodes []int
}

// Accepts reports whether code counts as success for this command
func (c CommandDefinition) Accepts(code int) bool {
	if len(c.ExitCodes) == 0 {
		return code == 0
	}
	for _, ok := range c.ExitCodes {
		if ok == code {
			return true
		}
	}
	return false
}

// StageGroup holds the commands of one stage
type StageGroup struct {
	Name     StageName
	Commands []CommandDefinition
}

// StagePlan is the ordered set of stage groups handed to the executor
type StagePlan struct {
	Groups []StageGroup
}

// Group returns the group with the given name
func (p StagePlan) Group(name StageName) (StageGroup, bool) {
	for _, g := range p.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return StageGroup{}, false
}

// ParameterSet maps placeholder names to values
type ParameterSet map[string]string

// Parameter names understood by the command templates
const (
	ParamMerchantID     = "merchantid"
	ParamReadTimeout    = "readTimeout"
	ParamImportStatsID  = "importStatsId"
	ParamURL            = "url"
	ParamUsername       = "username"
	ParamPassword       = "password"
	ParamXMLEntity      = "xmlEntity"
	ParamRowsLimitCount = "rowsLimitCount"
	ParamPath           = "path"
)

// ImportJob is a queued import attempt
type ImportJob struct {
	ID         string
	MerchantID string
	Variant    Variant
	Status     string
	Attempts   int
	StatsID    *int64
	LastError  string
	ErrorKind  string
	Retryable  bool
	EnqueuedAt time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Job statuses
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)
