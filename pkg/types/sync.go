package types

import (
	"fmt"
	"strings"
	"time"
)

// Decision is the choice made for one differing file
type Decision int

const (
	DecisionNone Decision = iota
	DecisionKeep
	DecisionReplace
	DecisionBackupAndReplace
	DecisionViewAgain
	DecisionQuit
)

var decisionNames = map[Decision]string{
	DecisionNone:             "none",
	DecisionKeep:             "keep",
	DecisionReplace:          "replace",
	DecisionBackupAndReplace: "backup-and-replace",
	DecisionViewAgain:        "view-again",
	DecisionQuit:             "quit",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets decisions render by name in json and yaml output
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Applies reports whether the decision writes the proposed content
func (d Decision) Applies() bool {
	return d == DecisionReplace || d == DecisionBackupAndReplace
}

// Strategy selects how differing files are handled during a sync
type Strategy string

const (
	StrategyAsk     Strategy = "ask"
	StrategyReplace Strategy = "replace"
	StrategySkip    Strategy = "skip"
)

// ParseStrategy parses a strategy name, defaulting to ask
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAsk:
		return StrategyAsk, nil
	case StrategyReplace:
		return StrategyReplace, nil
	case StrategySkip:
		return StrategySkip, nil
	default:
		return StrategyAsk, fmt.Errorf("unknown strategy %q (want ask, replace or skip)", s)
	}
}

// FileStatus describes how a proposed file compares to the system copy
type FileStatus string

const (
	StatusNew       FileStatus = "new"
	StatusModified  FileStatus = "modified"
	StatusIdentical FileStatus = "identical"
	StatusBinary    FileStatus = "binary"
)

// Outcome is the final state of one sync unit
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// BackupRecord describes one verbatim copy taken before an overwrite.
// Records are never pruned automatically.
type BackupRecord struct {
	OriginalPath string    `json:"originalPath" yaml:"originalPath"`
	BackupPath   string    `json:"backupPath" yaml:"backupPath"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// TemplateReport summarizes substitution for one written file
type TemplateReport struct {
	Variables []string `json:"variables" yaml:"variables"`
	Missing   []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// SyncResult is the outcome of one file
type SyncResult struct {
	Entry       MappingEntry    `json:"entry" yaml:"entry"`
	Source      string          `json:"source" yaml:"source"`
	Destination string          `json:"destination" yaml:"destination"`
	Status      FileStatus      `json:"status" yaml:"status"`
	Decision    Decision        `json:"decision" yaml:"decision"`
	Outcome     Outcome         `json:"outcome" yaml:"outcome"`
	Reason      string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Backup      *BackupRecord   `json:"backup,omitempty" yaml:"backup,omitempty"`
	Template    *TemplateReport `json:"template,omitempty" yaml:"template,omitempty"`
	// Diff holds the unified diff when changes are shown but not applied.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// ResultCode is the run-level verdict of an operation
type ResultCode string

const (
	CodeSuccess         ResultCode = "success"
	CodeValidationError ResultCode = "validation-error"
	CodePartialFailure  ResultCode = "partial-failure"
	CodeTotalFailure    ResultCode = "total-failure"
)

// SyncSummary aggregates the results of one sync run
type SyncSummary struct {
	Results            []SyncResult `json:"results" yaml:"results"`
	Applied            int          `json:"applied" yaml:"applied"`
	Skipped            int          `json:"skipped" yaml:"skipped"`
	Failed             int          `json:"failed" yaml:"failed"`
	Identical          int          `json:"identical" yaml:"identical"`
	TemplatesProcessed int          `json:"templatesProcessed" yaml:"templatesProcessed"`
	SecurityRejections []string     `json:"securityRejections,omitempty" yaml:"securityRejections,omitempty"`
	Quit               bool         `json:"quit" yaml:"quit"`
	DryRun             bool         `json:"dryRun" yaml:"dryRun"`
	Code               ResultCode   `json:"code" yaml:"code"`
}

// Add records a result and updates the counters
func (s *SyncSummary) Add(r SyncResult) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeApplied:
		s.Applied++
		if r.Template != nil {
			s.TemplatesProcessed++
		}
	case OutcomeSkipped:
		if r.Status == StatusIdentical {
			s.Identical++
		} else {
			s.Skipped++
		}
	case OutcomeFailed:
		s.Failed++
	}
}

// Finalize derives the result code from the counters. Any entry that did
// not fail counts as handled, so failures next to kept, skipped or
// identical entries are a partial failure; only a run where every entry
// failed is a total failure.
func (s *SyncSummary) Finalize() ResultCode {
	switch {
	case s.Failed == 0:
		s.Code = CodeSuccess
	case s.Applied == 0 && s.Skipped == 0 && s.Identical == 0:
		s.Code = CodeTotalFailure
	default:
		s.Code = CodePartialFailure
	}
	return s.Code
}

// FailedResults returns the results with a Failed outcome
func (s *SyncSummary) FailedResults() []SyncResult {
	var failed []SyncResult
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
