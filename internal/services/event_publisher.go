package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// EventPublisher フォロー関係の変化を外部へ配信する
type EventPublisher interface {
	PublishFollowed(ctx context.Context, actorID, targetID uint) error
	PublishUnfollowed(ctx context.Context, actorID, targetID uint) error
}

// FollowEvent 配信するイベント
type FollowEvent struct {
	Type       string    `json:"type"`
	ActorID    uint      `json:"actor_id"`
	TargetID   uint      `json:"target_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type natsEventPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewEventPublisher EventPublisherを作成（nc が nil の場合は何もしない実装）
func NewEventPublisher(nc *nats.Conn, subjectPrefix string) EventPublisher {
	if nc == nil {
		return noopEventPublisher{}
	}
	return &natsEventPublisher{nc: nc, prefix: subjectPrefix}
}

// PublishFollowed social.user.followed を配信
func (p *natsEventPublisher) PublishFollowed(ctx context.Context, actorID, targetID uint) error {
	return p.publish("user.followed", actorID, targetID)
}

// PublishUnfollowed social.user.unfollowed を配信
func (p *natsEventPublisher) PublishUnfollowed(ctx context.Context, actorID, targetID uint) error {
	return p.publish("user.unfollowed", actorID, targetID)
}

func (p *natsEventPublisher) publish(eventType string, actorID, targetID uint) error {
	data, err := json.Marshal(FollowEvent{
		Type:       eventType,
		ActorID:    actorID,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("イベントのJSONエンコードに失敗しました: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.prefix + "." + eventType,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")

	return p.nc.PublishMsg(msg)
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishFollowed(context.Context, uint, uint) error { return nil }

func (noopEventPublisher) PublishUnfollowed(context.Context, uint, uint) error { return nil }
