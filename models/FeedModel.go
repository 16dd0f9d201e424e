package models

// FeedActivity is a public activity entry shown in the feed
type FeedActivity struct {
	UserID       string        `dynamodbav:"userId" json:"userId"`       // Partition Key
	CreatedAt    string        `dynamodbav:"createdAt" json:"createdAt"` // Sort Key (RFC3339Nano)
	ActivityType string        `dynamodbav:"activityType" json:"activityType"`
	Description  string        `dynamodbav:"description" json:"description"`
	RelatedUser  string        `dynamodbav:"relatedUser,omitempty" json:"relatedUser,omitempty"`
	Metadata     *FeedMetadata `dynamodbav:"metadata,omitempty" json:"metadata,omitempty"`
	IsPublic     bool          `dynamodbav:"isPublic" json:"isPublic"`
}

type FeedMetadata struct {
	Duration    int    `dynamodbav:"duration,omitempty" json:"duration,omitempty"`
	StreakCount int    `dynamodbav:"streakCount,omitempty" json:"streakCount,omitempty"`
	CallType    string `dynamodbav:"callType,omitempty" json:"callType,omitempty"`
}

// FeedTable is the DynamoDB table name for feed activities
const FeedTable = "Feed"
