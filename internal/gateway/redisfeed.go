package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	changeChannelPrefix  = "paps:changes:" // per-owner channel: paps:changes:{owner_email}
	changeChannelPattern = "paps:changes:*"
)

// RedisChangeFeed carries change notifications over Redis pub/sub. It is
// both the publisher side (used by the row store) and the subscriber side
// (used by collection managers).
type RedisChangeFeed struct {
	client *redis.Client
}

func NewRedisChangeFeed(client *redis.Client) *RedisChangeFeed {
	return &RedisChangeFeed{client: client}
}

func (f *RedisChangeFeed) Publish(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return f.client.Publish(ctx, changeChannelPrefix+ev.OwnerEmail, payload).Err()
}

// Subscribe opens one change channel. A scoped subscription sees the
// given owner's channel plus the broadcast channel (events published
// with no owner, e.g. the nightly sync); an unscoped one pattern-matches
// every owner and the consumer discards irrelevant notifications by
// re-fetching with its own owner filter.
func (f *RedisChangeFeed) Subscribe(ctx context.Context, scope Scope) (Subscription, error) {
	var ps *redis.PubSub
	if scope.Owner != "" {
		ps = f.client.Subscribe(ctx, changeChannelPrefix+scope.Owner, changeChannelPrefix)
	} else {
		ps = f.client.PSubscribe(ctx, changeChannelPattern)
	}

	// Force the subscription onto the wire before returning so a caller
	// that mutates right after subscribing cannot miss its own event.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan ChangeEvent, 16),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	ps        *redis.PubSub
	events    chan ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (s *redisSubscription) Events() <-chan ChangeEvent { return s.events }

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *redisSubscription) pump() {
	defer close(s.events)
	ch := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[warn] operation=change_feed message=bad payload error=%v", err)
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			default:
				// Consumer is behind; dropping is safe because any
				// event only ever means "re-fetch" and a later event
				// or manual fetch covers the gap.
			}
		}
	}
}
