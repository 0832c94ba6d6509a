package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/clawdhub/clawdhub/internal/domain"
)

// SignalService fans project events out over redis pub/sub, one channel per
// project.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func projectChannel(projectID string) string {
	return "project:" + projectID
}

func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, projectChannel(event.ProjectID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime streams events for the project ids received on request until ctx
// is done or request closes. Each received id list replaces the current
// subscription set.
func (s *SignalService) Realtime(ctx context.Context, request <-chan []string, response chan<- domain.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case projects, ok := <-request:
			if !ok {
				return
			}
			if err := pubsub.Unsubscribe(ctx); err != nil {
				slog.ErrorContext(
					ctx, "Failed to reset subscriptions",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				return
			}
			channels := make([]string, 0, len(projects))
			for _, id := range projects {
				channels = append(channels, projectChannel(id))
			}
			if len(channels) == 0 {
				continue
			}
			if err := pubsub.Subscribe(ctx, channels...); err != nil {
				slog.ErrorContext(
					ctx, "Failed to subscribe",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				return
			}

		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Dropping malformed event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case response <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
