package domain

// TransitionEventType names a workflow transition worth broadcasting.
type TransitionEventType string

const (
	EventRequestInitiated   TransitionEventType = "request_initiated"
	EventTierAdvanced       TransitionEventType = "tier_advanced"
	EventApprovalComplete   TransitionEventType = "approval_complete"
	EventRequestHalted      TransitionEventType = "request_halted"
	EventRequestResubmitted TransitionEventType = "request_resubmitted"
)

// TransitionEvent is emitted by the workflow engine after a state change
// commits. Consumers (email dispatcher, realtime hub) treat it as a side
// effect: delivery failures never feed back into the state machine.
type TransitionEvent struct {
	Type     TransitionEventType
	Request  ApprovalRequest
	Creative Creative

	// FromTier and ToTier are set on tier_advanced only.
	FromTier Tier
	ToTier   Tier

	// ActorEmail and ActorName identify who caused the transition.
	ActorEmail string
	ActorName  string

	// Recipients are the participants who should be notified.
	Recipients []Participant
}
