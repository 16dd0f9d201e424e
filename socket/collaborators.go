package socket

import (
	"context"

	"opentalk_server/models"
)

// UserDirectory reads profiles and persists the presence/call flags on the user record
type UserDirectory interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SetOnline(ctx context.Context, userID, socketID string) error
	SetOffline(ctx context.Context, userID string) error
	SetCurrentMatch(ctx context.Context, userID, matchedUserID string) error
	StartCall(ctx context.Context, userID string) error
	FinishCall(ctx context.Context, userID string, minutes int) error
	ExpirePremium(ctx context.Context, userID string) error
}

type CallRecorder interface {
	RecordCall(ctx context.Context, call models.CallHistory) error
}

type FeedPublisher interface {
	PublishActivity(ctx context.Context, activity models.FeedActivity) error
}

// PresenceMirror publishes presence outside the process. Optional.
type PresenceMirror interface {
	MarkOnline(ctx context.Context, userID, socketID string) error
	MarkOffline(ctx context.Context, userID string) error
}

// AvatarResolver turns a stored avatar reference into a loadable URL. Optional.
type AvatarResolver interface {
	ResolveAvatar(ctx context.Context, ref string) string
}

// Deps are the collaborators the hub persists through
type Deps struct {
	Users    UserDirectory
	Calls    CallRecorder
	Feed     FeedPublisher
	Presence PresenceMirror
	Avatars  AvatarResolver
}
