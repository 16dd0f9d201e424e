package models

// Genders stored on the user record
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Call types
const (
	CallTypeVideo = "video"
	CallTypeAudio = "audio"
)

// Feed activity types
const (
	ActivityCallCompleted    = "call_completed"
	ActivityNewFollow        = "new_follow"
	ActivityPremiumActivated = "premium_activated"
	ActivityStreakAchieved   = "streak_achieved"
)

// Default thresholds, in seconds
const (
	DefaultFollowThreshold = 120
	DefaultFeedThreshold   = 60
)
