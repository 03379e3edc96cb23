package events

const (
	// KindOperatorPushToTalkPressed identifies the talk button going down.
	KindOperatorPushToTalkPressed Kind = "operator.push_to_talk_pressed"
	// KindOperatorPushToTalkReleased identifies the talk button going up.
	KindOperatorPushToTalkReleased Kind = "operator.push_to_talk_released"
	// KindOperatorEmergencyStop identifies the operator emergency stop.
	KindOperatorEmergencyStop Kind = "operator.emergency_stop"
	// KindOperatorResume identifies the resume out of emergency stop.
	KindOperatorResume Kind = "operator.resume"
	// KindOperatorForceReset identifies the operator force reset.
	KindOperatorForceReset Kind = "operator.force_reset"
)

// OperatorPushToTalkPressed marks the talk button going down.
type OperatorPushToTalkPressed struct{ Base }

// NewOperatorPushToTalkPressed creates a push-to-talk pressed event.
func NewOperatorPushToTalkPressed() OperatorPushToTalkPressed {
	return OperatorPushToTalkPressed{Base: NewBase(KindOperatorPushToTalkPressed)}
}

// OperatorPushToTalkReleased marks the talk button going up.
type OperatorPushToTalkReleased struct{ Base }

// NewOperatorPushToTalkReleased creates a push-to-talk released event.
func NewOperatorPushToTalkReleased() OperatorPushToTalkReleased {
	return OperatorPushToTalkReleased{Base: NewBase(KindOperatorPushToTalkReleased)}
}

// OperatorEmergencyStop marks the operator emergency stop. It outranks every
// other event regardless of the current phase.
type OperatorEmergencyStop struct{ Base }

// NewOperatorEmergencyStop creates an emergency stop event.
func NewOperatorEmergencyStop() OperatorEmergencyStop {
	return OperatorEmergencyStop{Base: NewBase(KindOperatorEmergencyStop)}
}

// OperatorResume marks the explicit resume out of the emergency-stopped phase.
type OperatorResume struct{ Base }

// NewOperatorResume creates a resume event.
func NewOperatorResume() OperatorResume {
	return OperatorResume{Base: NewBase(KindOperatorResume)}
}

// OperatorForceReset marks the operator force reset of the current turn.
type OperatorForceReset struct{ Base }

// NewOperatorForceReset creates a force reset event.
func NewOperatorForceReset() OperatorForceReset {
	return OperatorForceReset{Base: NewBase(KindOperatorForceReset)}
}
