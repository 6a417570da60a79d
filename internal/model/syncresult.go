package model

import "fmt"

// MaxSyncErrors caps the per-record error list carried by a SyncResult.
// Errors beyond the cap are dropped; the counts remain accurate.
const MaxSyncErrors = 20

// SyncResult is the stable result contract shared by every source adapter:
// broker sync, exchange sync, statement import and CSV import all report this
// shape. A false Success means the whole run aborted (transport or auth
// failure) and Error carries the reason; per-record failures are listed in
// Errors and do not fail the run.
type SyncResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	Error    string   `json:"error,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// NewSyncResult returns a successful, empty result with a non-nil error list.
func NewSyncResult() SyncResult {
	return SyncResult{Success: true, Errors: []string{}}
}

// AddError records a per-record failure, dropping entries past the cap.
func (r *SyncResult) AddError(format string, args ...any) {
	if len(r.Errors) >= MaxSyncErrors {
		return
	}
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Fail marks the whole run as aborted with a top-level error.
func (r *SyncResult) Fail(err error) {
	r.Success = false
	r.Error = err.Error()
}
