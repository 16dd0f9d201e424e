package services

import (
	"context"
	"fmt"

	"opentalk_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

type CallHistoryService struct {
	Dynamo *DynamoService
}

// RecordCall stores a completed call
func (s *CallHistoryService) RecordCall(ctx context.Context, call models.CallHistory) error {
	if call.PairKey == "" {
		call.PairKey = models.PairKey(call.Caller, call.Receiver)
	}
	if err := s.Dynamo.PutItem(ctx, models.CallHistoryTable, call); err != nil {
		return fmt.Errorf("failed to record call %s: %w", call.CallID, err)
	}

	log.WithFields(log.Fields{
		"callId":   call.CallID,
		"duration": call.Duration,
	}).Info("📼 Call history saved")
	return nil
}

// GetCallsBetween returns the calls two users had together, latest first
func (s *CallHistoryService) GetCallsBetween(ctx context.Context, userA, userB string) ([]models.CallHistory, error) {
	keyCondition := "#pairKey = :pairKey"
	expressionValues := map[string]types.AttributeValue{
		":pairKey": &types.AttributeValueMemberS{Value: models.PairKey(userA, userB)},
	}
	expressionNames := map[string]string{
		"#pairKey": "pairKey",
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.CallHistoryTable, keyCondition, expressionValues, expressionNames, 50, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch call history: %w", err)
	}

	var calls []models.CallHistory
	if err := attributevalue.UnmarshalListOfMaps(items, &calls); err != nil {
		return nil, fmt.Errorf("failed to parse call history: %w", err)
	}
	return calls, nil
}
