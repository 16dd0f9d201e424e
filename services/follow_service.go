package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opentalk_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

var (
	ErrCannotFollowSelf         = errors.New("cannot follow yourself")
	ErrInsufficientCallDuration = errors.New("need at least 2 minutes of call to follow")
	ErrAlreadyFollowing         = errors.New("already following this user")
)

// FollowService creates follow relationships between users who met on a call
type FollowService struct {
	Dynamo    *DynamoService
	Users     *UserProfileService
	Calls     *CallHistoryService
	Feed      *FeedService
	Threshold time.Duration
}

type followStore interface {
	PutItemIfAbsent(ctx context.Context, tableName string, item interface{}, partitionKey string) (bool, error)
	DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error
}

type followLinker interface {
	LinkFollow(ctx context.Context, followerID, followingID string) error
}

// FollowResult is returned to the client after a follow is created
type FollowResult struct {
	Follow   models.Follow `json:"follow"`
	IsMutual bool          `json:"isMutual"`
}

// LongestCall returns the longest recorded call, or nil when there is none
func LongestCall(calls []models.CallHistory) *models.CallHistory {
	var longest *models.CallHistory
	for i := range calls {
		if longest == nil || calls[i].Duration > longest.Duration {
			longest = &calls[i]
		}
	}
	return longest
}

// ValidateFollow checks the follow rules against the server-side call duration
func ValidateFollow(followerID, targetID string, durationSeconds int, threshold time.Duration) error {
	if followerID == targetID {
		return ErrCannotFollowSelf
	}
	if time.Duration(durationSeconds)*time.Second < threshold {
		return ErrInsufficientCallDuration
	}
	return nil
}

// FollowUser follows targetID on behalf of followerID. The eligible duration is
// taken from the recorded call history, reportedDuration is only compared.
func (s *FollowService) FollowUser(ctx context.Context, followerID, targetID string, reportedDuration int) (*FollowResult, error) {
	if followerID == targetID {
		return nil, ErrCannotFollowSelf
	}

	calls, err := s.Calls.GetCallsBetween(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}

	duration := 0
	longest := LongestCall(calls)
	if longest != nil {
		duration = longest.Duration
	}
	if reportedDuration != duration {
		log.WithFields(log.Fields{
			"follower": followerID,
			"target":   targetID,
			"reported": reportedDuration,
			"recorded": duration,
		}).Warn("⚠️ Reported call duration differs from call history")
	}

	if err := ValidateFollow(followerID, targetID, duration, s.threshold()); err != nil {
		return nil, err
	}

	follow := models.Follow{
		Follower:    followerID,
		Following:   targetID,
		MetDuration: duration,
		MetAt:       time.Now().UTC().Format(time.RFC3339),
	}

	if err := createFollowEdge(ctx, s.Dynamo, s.Users, follow); err != nil {
		return nil, err
	}

	mutual, err := s.markMutual(ctx, followerID, targetID)
	if err != nil {
		log.WithError(err).Error("❌ Failed to update mutual follow flag")
	}
	follow.IsMutual = mutual

	if err := s.markFollowedAfter(ctx, longest); err != nil {
		log.WithError(err).Error("❌ Failed to flag call history as followed")
	}

	s.publishFollow(ctx, followerID, targetID)

	log.WithFields(log.Fields{
		"follower": followerID,
		"target":   targetID,
		"mutual":   mutual,
	}).Info("🤝 New follow")
	return &FollowResult{Follow: follow, IsMutual: mutual}, nil
}

func (s *FollowService) threshold() time.Duration {
	if s.Threshold <= 0 {
		return models.DefaultFollowThreshold * time.Second
	}
	return s.Threshold
}

// createFollowEdge stores the follow row and links both profiles. When the
// link fails the row is removed again so the same follow can be retried.
func createFollowEdge(ctx context.Context, store followStore, linker followLinker, follow models.Follow) error {
	created, err := store.PutItemIfAbsent(ctx, models.FollowsTable, follow, "follower")
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyFollowing
	}

	linkErr := linker.LinkFollow(ctx, follow.Follower, follow.Following)
	if linkErr == nil {
		return nil
	}
	if err := store.DeleteItem(ctx, models.FollowsTable, followKey(follow.Follower, follow.Following)); err != nil {
		log.WithFields(log.Fields{
			"follower": follow.Follower,
			"target":   follow.Following,
		}).WithError(err).Error("❌ Failed to roll back follow row")
		return errors.Join(linkErr, err)
	}
	return linkErr
}

// markMutual flips isMutual on both edges when the reverse follow exists
func (s *FollowService) markMutual(ctx context.Context, followerID, targetID string) (bool, error) {
	_, err := s.Dynamo.GetItem(ctx, models.FollowsTable, followKey(targetID, followerID))
	if errors.Is(err, ErrItemNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	values := map[string]types.AttributeValue{
		":mutual": &types.AttributeValueMemberBOOL{Value: true},
	}
	for _, key := range []map[string]types.AttributeValue{followKey(followerID, targetID), followKey(targetID, followerID)} {
		if _, err := s.Dynamo.UpdateItem(ctx, models.FollowsTable, "SET isMutual = :mutual", key, values, nil); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *FollowService) markFollowedAfter(ctx context.Context, call *models.CallHistory) error {
	if call == nil {
		return nil
	}
	key := map[string]types.AttributeValue{
		"pairKey":   &types.AttributeValueMemberS{Value: call.PairKey},
		"startedAt": &types.AttributeValueMemberS{Value: call.StartedAt.Format(time.RFC3339Nano)},
	}
	_, err := s.Dynamo.UpdateItem(ctx, models.CallHistoryTable, "SET followedAfter = :followed", key,
		map[string]types.AttributeValue{
			":followed": &types.AttributeValueMemberBOOL{Value: true},
		}, nil)
	return err
}

func (s *FollowService) publishFollow(ctx context.Context, followerID, targetID string) {
	follower, err := s.Users.GetUserProfile(ctx, followerID)
	if err != nil {
		log.WithError(err).WithField("userId", followerID).Warn("⚠️ Skipping follow feed entry")
		return
	}
	target, err := s.Users.GetUserProfile(ctx, targetID)
	if err != nil {
		log.WithError(err).WithField("userId", targetID).Warn("⚠️ Skipping follow feed entry")
		return
	}

	err = s.Feed.PublishActivity(ctx, models.FeedActivity{
		UserID:       followerID,
		ActivityType: models.ActivityNewFollow,
		Description:  fmt.Sprintf("%s started following %s", follower.Username, target.Username),
		RelatedUser:  targetID,
		IsPublic:     true,
	})
	if err != nil {
		log.WithError(err).Error("❌ Failed to publish follow activity")
	}
}

func followKey(follower, following string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"follower":  &types.AttributeValueMemberS{Value: follower},
		"following": &types.AttributeValueMemberS{Value: following},
	}
}
