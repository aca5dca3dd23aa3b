package mep

import (
	"fmt"

	"github.com/andisab/mise-en-place/pkg/types"
)

// Exit codes by report result
const (
	ExitSuccess         = 0
	ExitPartialFailure  = 1
	ExitTotalFailure    = 2
	ExitValidationError = 3
)

// ExitError reports an unsuccessful operation whose report was already
// written. main exits with Code and prints nothing further.
type ExitError struct {
	Operation string
	Result    types.ResultCode
	Code      int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s finished with %s", e.Operation, e.Result)
}

// ExitCodeFor maps a report result to a process exit code
func ExitCodeFor(result types.ResultCode) int {
	switch result {
	case types.CodeSuccess:
		return ExitSuccess
	case types.CodePartialFailure:
		return ExitPartialFailure
	case types.CodeValidationError:
		return ExitValidationError
	default:
		return ExitTotalFailure
	}
}
