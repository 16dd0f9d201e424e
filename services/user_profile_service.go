package services

import (
	"context"
	"errors"
	"fmt"

	"opentalk_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

// ErrProfileNotFound is returned when no user record exists for an id
var ErrProfileNotFound = errors.New("profile not found")

type UserProfileService struct {
	Dynamo *DynamoService
}

func userKey(userID string) map[string]types.AttributeValue {
	return stringKey("userId", userID)
}

// GetUserProfile retrieves a user profile by ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, userKey(userID))
	if errors.Is(err, ErrItemNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// SetOnline marks the user online and records the socket that reaches them
func (ups *UserProfileService) SetOnline(ctx context.Context, userID, socketID string) error {
	_, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET isOnline = :online, socketId = :socket",
		userKey(userID),
		map[string]types.AttributeValue{
			":online": &types.AttributeValueMemberBOOL{Value: true},
			":socket": &types.AttributeValueMemberS{Value: socketID},
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to mark %s online: %w", userID, err)
	}
	return nil
}

// SetOffline marks the user offline and clears the socket reference
func (ups *UserProfileService) SetOffline(ctx context.Context, userID string) error {
	_, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET isOnline = :online REMOVE socketId",
		userKey(userID),
		map[string]types.AttributeValue{
			":online": &types.AttributeValueMemberBOOL{Value: false},
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to mark %s offline: %w", userID, err)
	}
	return nil
}

// SetCurrentMatch stores the id of the stranger the user was just paired with
func (ups *UserProfileService) SetCurrentMatch(ctx context.Context, userID, matchedUserID string) error {
	_, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET currentMatch = :match",
		userKey(userID),
		map[string]types.AttributeValue{
			":match": &types.AttributeValueMemberS{Value: matchedUserID},
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to set current match for %s: %w", userID, err)
	}
	return nil
}

// StartCall sets inCall and clears the pending match reference
func (ups *UserProfileService) StartCall(ctx context.Context, userID string) error {
	_, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET inCall = :inCall REMOVE currentMatch",
		userKey(userID),
		map[string]types.AttributeValue{
			":inCall": &types.AttributeValueMemberBOOL{Value: true},
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to mark %s in call: %w", userID, err)
	}
	return nil
}

// FinishCall clears inCall/currentMatch and adds the call minutes to totalCallTime
func (ups *UserProfileService) FinishCall(ctx context.Context, userID string, minutes int) error {
	_, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET inCall = :inCall, totalCallTime = if_not_exists(totalCallTime, :zero) + :minutes REMOVE currentMatch",
		userKey(userID),
		map[string]types.AttributeValue{
			":inCall":  &types.AttributeValueMemberBOOL{Value: false},
			":zero":    &types.AttributeValueMemberN{Value: "0"},
			":minutes": &types.AttributeValueMemberN{Value: fmt.Sprint(minutes)},
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to finish call for %s: %w", userID, err)
	}
	return nil
}

// ExpirePremium clears the premium flag once the subscription has lapsed
func (ups *UserProfileService) ExpirePremium(ctx context.Context, userID string) error {
	_, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET isPremium = :premium",
		userKey(userID),
		map[string]types.AttributeValue{
			":premium": &types.AttributeValueMemberBOOL{Value: false},
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to expire premium for %s: %w", userID, err)
	}
	log.WithField("userId", userID).Info("⏳ Premium subscription expired")
	return nil
}

// LinkFollow adds the follow edge to both users' follower/following sets
func (ups *UserProfileService) LinkFollow(ctx context.Context, followerID, followingID string) error {
	if _, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"ADD following :ids",
		userKey(followerID),
		map[string]types.AttributeValue{
			":ids": &types.AttributeValueMemberSS{Value: []string{followingID}},
		}, nil); err != nil {
		return fmt.Errorf("failed to update following for %s: %w", followerID, err)
	}

	if _, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"ADD followers :ids",
		userKey(followingID),
		map[string]types.AttributeValue{
			":ids": &types.AttributeValueMemberSS{Value: []string{followerID}},
		}, nil); err != nil {
		return fmt.Errorf("failed to update followers for %s: %w", followingID, err)
	}
	return nil
}
