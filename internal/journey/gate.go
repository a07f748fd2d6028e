package journey

// Accessible is the step gate: a step is reachable once the user's current
// step has caught up to it. A nil currentStep means progress has not loaded
// yet; the gate stays open rather than blocking on a transient state.
func Accessible(targetStepID int, currentStep *int) bool {
	if currentStep == nil {
		return true
	}
	return targetStepID <= *currentStep
}
