package dataset

import "fmt"

// InsufficientClassBalanceError reports a stratified split that would leave a
// class with zero examples on one side. Splitting raises instead of silently
// producing a degenerate set.
type InsufficientClassBalanceError struct {
	Label string
	Class int
	Stage string
}

func (e *InsufficientClassBalanceError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("label %q: class %d has too few examples to stratify the %s split", e.Label, e.Class, e.Stage)
	}
	return fmt.Sprintf("class %d has too few examples to stratify the %s split", e.Class, e.Stage)
}

// LeakageColumnConflictError reports a target label whose exclusion rules
// cannot be resolved against the policy.
type LeakageColumnConflictError struct {
	Label  string
	Reason string
}

func (e *LeakageColumnConflictError) Error() string {
	return fmt.Sprintf("label %q: %s", e.Label, e.Reason)
}
