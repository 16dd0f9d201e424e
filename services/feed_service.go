package services

import (
	"context"
	"fmt"
	"time"

	"opentalk_server/models"
)

type FeedService struct {
	Dynamo *DynamoService
}

// PublishActivity appends an activity to the user's feed
func (s *FeedService) PublishActivity(ctx context.Context, activity models.FeedActivity) error {
	if activity.CreatedAt == "" {
		activity.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := s.Dynamo.PutItem(ctx, models.FeedTable, activity); err != nil {
		return fmt.Errorf("failed to publish %s activity: %w", activity.ActivityType, err)
	}
	return nil
}
