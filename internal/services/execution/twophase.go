package execution

import "context"

// transferStatus is the exhaustive outcome set of a two-phase budget
// transfer. Callers switch on it instead of inspecting error shapes.
type transferStatus int

const (
	// transferOK: both forward steps succeeded.
	transferOK transferStatus = iota
	// transferFailedClean: the first step failed, nothing was mutated.
	transferFailedClean
	// transferRolledBack: the second step failed and the compensating
	// action restored the first step.
	transferRolledBack
	// transferRollbackFailed: the second step failed and so did the
	// compensating action. External state is inconsistent.
	transferRollbackFailed
)

// transferOutcome reports what happened and carries the underlying
// errors for reporting.
type transferOutcome struct {
	Status      transferStatus
	ForwardErr  error
	RollbackErr error
}

// runTwoPhase executes decrease then increase strictly in order. When
// increase fails it runs restore, the compensating action for decrease.
// Each step depends on the previous one's outcome, so no step is ever
// abandoned mid-flight.
func runTwoPhase(ctx context.Context, decrease, increase, restore func(context.Context) error) transferOutcome {
	if err := decrease(ctx); err != nil {
		return transferOutcome{Status: transferFailedClean, ForwardErr: err}
	}
	err := increase(ctx)
	if err == nil {
		return transferOutcome{Status: transferOK}
	}
	if rbErr := restore(ctx); rbErr != nil {
		return transferOutcome{Status: transferRollbackFailed, ForwardErr: err, RollbackErr: rbErr}
	}
	return transferOutcome{Status: transferRolledBack, ForwardErr: err}
}
