package socket

// MatchError is a user-facing matchmaking failure, sent as a match_error event
type MatchError struct {
	Reason  string
	Message string
}

func (e *MatchError) Error() string {
	return e.Message
}

func (e *MatchError) payload() MatchErrorPayload {
	return MatchErrorPayload{Message: e.Message, Reason: e.Reason}
}

var (
	ErrAlreadySearching   = &MatchError{Reason: "already_searching", Message: "Already searching for match"}
	ErrPremiumRequired    = &MatchError{Reason: "premium_required", Message: "Premium subscription required for gender filtering"}
	ErrInvalidFilter      = &MatchError{Reason: "invalid_filter", Message: "Unknown match filter"}
	ErrProfileUnavailable = &MatchError{Reason: "profile_unavailable", Message: "Could not load your profile"}
	ErrNotOnline          = &MatchError{Reason: "not_online", Message: "Send user_online before searching"}
)
