package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidTarget is matched by every InvalidTargetError.
var ErrInvalidTarget = errors.New("invalid target")

// InvalidTargetError reports a target that is not a column of the input frame.
type InvalidTargetError struct {
	Target string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("variable %q not found in dataset", e.Target)
}

func (e *InvalidTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}
