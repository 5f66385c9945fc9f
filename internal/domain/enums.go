package domain

// RequestStatus represents the lifecycle state of an approval request.
type RequestStatus string

const (
	RequestStatusPending       RequestStatus = "PENDING"
	RequestStatusInReview      RequestStatus = "IN_REVIEW"
	RequestStatusApproved      RequestStatus = "APPROVED"
	RequestStatusRejected      RequestStatus = "REJECTED"
	RequestStatusNeedsRevision RequestStatus = "NEEDS_REVISION"
)

func (s RequestStatus) String() string { return string(s) }

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInReview, RequestStatusApproved,
		RequestStatusRejected, RequestStatusNeedsRevision:
		return true
	}
	return false
}

// IsTerminal reports whether the request can no longer change. Approved is the
// only truly terminal state; rejected and needs_revision can be re-opened by
// the creative owner via resubmit.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved
}

// IsHalted reports whether tier evaluation has stopped pending owner action.
func (s RequestStatus) IsHalted() bool {
	return s == RequestStatusRejected || s == RequestStatusNeedsRevision
}

// ParticipantStatus represents a reviewer's decision state.
type ParticipantStatus string

const (
	ParticipantStatusPending  ParticipantStatus = "PENDING"
	ParticipantStatusApproved ParticipantStatus = "APPROVED"
	ParticipantStatusRejected ParticipantStatus = "REJECTED"
)

func (s ParticipantStatus) String() string { return string(s) }

func (s ParticipantStatus) IsValid() bool {
	switch s {
	case ParticipantStatusPending, ParticipantStatusApproved, ParticipantStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the participant has made a decision.
// Once terminal, the participant record is never mutated again (except by an
// explicit resubmit, which resets the halted tier).
func (s ParticipantStatus) IsTerminal() bool {
	return s == ParticipantStatusApproved || s == ParticipantStatusRejected
}

// IsDecision reports whether the status is a valid submitted decision.
// Pending is a resting state, not a decision.
func (s ParticipantStatus) IsDecision() bool {
	return s == ParticipantStatusApproved || s == ParticipantStatusRejected
}

// Tier is a sequential reviewer stage. All participants of a tier must
// approve before the request advances to the next tier.
type Tier int

const (
	TierClient          Tier = 1 // advertiser-side reviewers
	TierAccountExec     Tier = 2 // account executive
	TierCampaignManager Tier = 3 // digital campaign manager

	// MinTier and MaxTier bound current_tier for every request.
	MinTier = TierClient
	MaxTier = TierCampaignManager
)

func (t Tier) IsValid() bool { return t >= MinTier && t <= MaxTier }

// Name returns the human-readable tier name used in notifications.
func (t Tier) Name() string {
	switch t {
	case TierClient:
		return "Client"
	case TierAccountExec:
		return "Account Executive"
	case TierCampaignManager:
		return "Digital Campaign Manager"
	}
	return "Unknown"
}

// ActivityType identifies the kind of event recorded in the activity trail.
type ActivityType string

const (
	ActivityCreated           ActivityType = "CREATED"
	ActivityEmailSent         ActivityType = "EMAIL_SENT"
	ActivityEmailOpened       ActivityType = "EMAIL_OPENED"
	ActivityEmailClicked      ActivityType = "EMAIL_CLICKED"
	ActivityCommentAdded      ActivityType = "COMMENT_ADDED"
	ActivityRevisionSuggested ActivityType = "REVISION_SUGGESTED"
	ActivityCreativeViewed    ActivityType = "CREATIVE_VIEWED"
	ActivityApproved          ActivityType = "APPROVED"
	ActivityRejected          ActivityType = "REJECTED"
	ActivityTierAdvanced      ActivityType = "TIER_ADVANCED"
	ActivityApprovalComplete  ActivityType = "APPROVAL_COMPLETE"
	ActivityResubmitted       ActivityType = "RESUBMITTED"
)

func (t ActivityType) String() string { return string(t) }

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityCreated, ActivityEmailSent, ActivityEmailOpened, ActivityEmailClicked,
		ActivityCommentAdded, ActivityRevisionSuggested, ActivityCreativeViewed,
		ActivityApproved, ActivityRejected, ActivityTierAdvanced,
		ActivityApprovalComplete, ActivityResubmitted:
		return true
	}
	return false
}

// CreativeStatus represents the lifecycle state of an ad creative.
type CreativeStatus string

const (
	CreativeStatusDraft      CreativeStatus = "DRAFT"
	CreativeStatusInApproval CreativeStatus = "IN_APPROVAL"
	CreativeStatusApproved   CreativeStatus = "APPROVED"
	CreativeStatusArchived   CreativeStatus = "ARCHIVED"
)

func (s CreativeStatus) String() string { return string(s) }

func (s CreativeStatus) IsValid() bool {
	switch s {
	case CreativeStatusDraft, CreativeStatusInApproval, CreativeStatusApproved, CreativeStatusArchived:
		return true
	}
	return false
}

// Platform identifies the ad platform a creative targets.
type Platform string

const (
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformInstagram Platform = "INSTAGRAM"
)

func (p Platform) IsValid() bool {
	return p == PlatformFacebook || p == PlatformInstagram
}
