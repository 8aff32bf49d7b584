package service

import (
	"context"
	"encoding/json"

	"travelbill/internal/config"
	"travelbill/internal/model"
	"travelbill/internal/repository"

	"gorm.io/gorm"
)

const defaultLedgerTopic = "ledger_events"

// writeLedgerEvent 在当前单位工作内写入台账事件的 outbox 行，
// 投递由后台任务完成，保证"先提交、后可见"
func writeLedgerEvent(ctx context.Context, tx *gorm.DB, outboxRepo *repository.OutboxRepository,
	cfg *config.Config, messageKey, event string, payload map[string]interface{}) error {

	topic := defaultLedgerTopic
	if cfg != nil && cfg.Kafka.Topic.LedgerEvents != "" {
		topic = cfg.Kafka.Topic.LedgerEvents
	}

	payload["event"] = event
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: messageKey,
		Topic:      topic,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	return outboxRepo.Create(ctx, tx, msg)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
