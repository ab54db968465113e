package live

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Announcer avisa as instâncias do feed que a coleção mudou
type Announcer interface {
	Announce(ctx context.Context) error
}

type RedisAnnouncer struct {
	r       *redis.Client
	channel string
}

func NewRedisAnnouncer(r *redis.Client, channel string) *RedisAnnouncer {
	return &RedisAnnouncer{r: r, channel: channel}
}

func (a *RedisAnnouncer) Announce(ctx context.Context) error {
	return a.r.Publish(ctx, a.channel, "changed").Err()
}

// StartRedisSubscriber escuta o canal e faz broadcast no hub a cada mensagem.
// Só retorna depois da inscrição confirmada pelo Redis.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) error {
	sub := r.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					log.Warn("redis subscription closed", zap.String("channel", channel))
					return
				}
				if msg == nil {
					continue
				}
				hub.Broadcast()
			}
		}
	}()
	return nil
}
