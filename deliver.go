package mongostore

// delivery describes how a failure must be reported. Error delivery is a
// fan-out: every channel present receives the error independently, and a
// failure with no channel at all escalates to a panic so it cannot be
// swallowed silently.
type delivery uint8

const (
	// deliverReturn hands the error to the waiting caller.
	deliverReturn delivery = 1 << iota
	// deliverEmit notifies the registered error listeners.
	deliverEmit
	// deliverPanic raises the error because nobody else would see it.
	deliverPanic
)

// deliveryPlan decides how to report a failure given which channels exist.
// It is a pure function of its inputs so the contract is testable in
// isolation from store state.
func deliveryPlan(hasCaller, hasListener bool) delivery {
	var plan delivery
	if hasCaller {
		plan |= deliverReturn
	}
	if hasListener {
		plan |= deliverEmit
	}
	if plan == 0 {
		plan = deliverPanic
	}
	return plan
}

// has reports whether the plan includes the given action.
func (d delivery) has(action delivery) bool {
	return d&action != 0
}
