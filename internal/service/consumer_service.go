package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-permit-planner-be/internal/dto"
	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "CONSUMER"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	runRepo    contract.RunRepository
	logger     logger.ILogger
}

// NewConsumerService stores every run published on topicName.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	runRepo contract.RunRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		runRepo:    runRepo,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistRunMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal persist message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Retrying cannot fix a malformed payload.
		msg.Ack()
		return
	}

	run := &entity.RunRecord{
		SessionId:    payload.SessionId,
		RequesterId:  payload.RequesterId,
		Request:      payload.Request,
		Pipeline:     payload.Pipeline,
		Result:       payload.Result,
		Debate:       payload.Debate,
		FallbackUsed: payload.FallbackUsed,
		CompletedAt:  payload.CompletedAt,
	}
	if err := cs.runRepo.Save(ctx, run); err != nil {
		if errors.Is(err, contract.ErrSessionTaken) {
			cs.logger.Warn(consumerModule, "Run dropped, session id belongs to another requester", map[string]interface{}{
				"session_id": payload.SessionId,
			})
			msg.Ack()
			return
		}
		cs.logger.Error(consumerModule, "Failed to save run", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info(consumerModule, "Run saved", map[string]interface{}{
		"session_id": payload.SessionId,
		"fallback":   payload.FallbackUsed,
	})
	msg.Ack()
}
