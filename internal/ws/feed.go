package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wb-go/wbf/zlog"

	"campus360/internal/repo"
)

// FeedBroadcaster pushes a fresh snapshot of the active community feed on a
// fixed interval. Mutations broadcast immediately through the hub; the ticker
// exists only to re-evaluate expiry locally, so posts vanish from connected
// clients without any store event.
type FeedBroadcaster struct {
	hub      *Hub
	store    repo.Chat
	interval time.Duration
}

func NewFeedBroadcaster(hub *Hub, store repo.Chat, interval time.Duration) *FeedBroadcaster {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &FeedBroadcaster{hub: hub, store: store, interval: interval}
}

func (f *FeedBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	zlog.Logger.Info().Dur("interval", f.interval).Msg("feed broadcaster started")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("feed broadcaster stopped")
			return
		case <-ticker.C:
			posts, err := f.store.ListActivePosts(ctx)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to load feed snapshot")
				continue
			}
			frame, err := json.Marshal(Message{Type: "feed", Data: posts})
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to marshal feed snapshot")
				continue
			}
			f.hub.Broadcast <- frame
		}
	}
}
