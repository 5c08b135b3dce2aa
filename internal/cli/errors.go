package cli

import "fmt"

// ExitError lets a RunE func pick the process exit code without calling
// os.Exit, which keeps commands testable.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
