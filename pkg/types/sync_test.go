// pkg/types/sync_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Verify summary counters and the derived result code

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andisab/mise-en-place/pkg/types"
)

func TestFinalize(t *testing.T) {
	applied := types.SyncResult{Status: types.StatusModified, Outcome: types.OutcomeApplied}
	kept := types.SyncResult{Status: types.StatusModified, Outcome: types.OutcomeSkipped}
	identical := types.SyncResult{Status: types.StatusIdentical, Outcome: types.OutcomeSkipped}
	failed := types.SyncResult{Status: types.StatusNew, Outcome: types.OutcomeFailed}

	tests := []struct {
		name    string
		results []types.SyncResult
		want    types.ResultCode
	}{
		{"empty run", nil, types.CodeSuccess},
		{"all applied", []types.SyncResult{applied, applied}, types.CodeSuccess},
		{"applied and failed", []types.SyncResult{applied, failed}, types.CodePartialFailure},
		{"kept and failed", []types.SyncResult{kept, failed}, types.CodePartialFailure},
		{"identical and failed", []types.SyncResult{identical, failed}, types.CodePartialFailure},
		{"only failures", []types.SyncResult{failed, failed}, types.CodeTotalFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s types.SyncSummary
			for _, r := range tt.results {
				s.Add(r)
			}
			assert.Equal(t, tt.want, s.Finalize())
			assert.Equal(t, tt.want, s.Code)
		})
	}
}
