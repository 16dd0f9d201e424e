package models

// Follow links a follower to the user they met on a call
type Follow struct {
	Follower    string `dynamodbav:"follower" json:"follower"`   // Partition Key
	Following   string `dynamodbav:"following" json:"following"` // Sort Key
	MetDuration int    `dynamodbav:"metDuration" json:"metDuration"`
	MetAt       string `dynamodbav:"metAt" json:"metAt"`
	IsMutual    bool   `dynamodbav:"isMutual" json:"isMutual"`
}

// FollowsTable is the DynamoDB table name for follow relationships
const FollowsTable = "Follows"
