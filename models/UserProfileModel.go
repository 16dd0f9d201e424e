package models

import "time"

// UserProfile is the durable user record. The core only reads identity, gender,
// entitlement and followers, and writes the presence flags.
type UserProfile struct {
	UserID           string     `dynamodbav:"userId" json:"userId"` // Partition Key
	Username         string     `dynamodbav:"username,omitempty" json:"username,omitempty"`
	Email            string     `dynamodbav:"email,omitempty" json:"email,omitempty"`
	Gender           string     `dynamodbav:"gender,omitempty" json:"gender,omitempty"` // male, female, other
	Age              int        `dynamodbav:"age,omitempty" json:"age,omitempty"`
	Bio              string     `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Avatar           string     `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"` // S3 key or absolute URL
	Interests        []string   `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	IsPremium        bool       `dynamodbav:"isPremium" json:"isPremium"`
	PremiumExpiresAt *time.Time `dynamodbav:"premiumExpiresAt,omitempty" json:"premiumExpiresAt,omitempty"`
	TotalCallTime    int        `dynamodbav:"totalCallTime" json:"totalCallTime"` // minutes

	// Presence flags mirrored from the live tables
	IsOnline     bool   `dynamodbav:"isOnline" json:"isOnline"`
	SocketID     string `dynamodbav:"socketId,omitempty" json:"-"`
	InCall       bool   `dynamodbav:"inCall" json:"inCall"`
	CurrentMatch string `dynamodbav:"currentMatch,omitempty" json:"currentMatch,omitempty"`

	Followers []string `dynamodbav:"followers,stringset,omitempty" json:"followers,omitempty"`
	Following []string `dynamodbav:"following,stringset,omitempty" json:"following,omitempty"`
}

// IsPremiumActive reports whether the subscription is active at now.
func (p *UserProfile) IsPremiumActive(now time.Time) bool {
	if !p.IsPremium {
		return false
	}
	if p.PremiumExpiresAt != nil && !p.PremiumExpiresAt.After(now) {
		return false
	}
	return true
}

// PremiumLapsed is true when the premium flag is still set but the expiry has passed.
func (p *UserProfile) PremiumLapsed(now time.Time) bool {
	return p.IsPremium && !p.IsPremiumActive(now)
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "Users"
