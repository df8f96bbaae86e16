package consumerWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"campus360/internal/dto"
	"campus360/internal/mailer"
	"campus360/internal/notify"
	"campus360/internal/rabbit"
)

// Reader drains the notification queue and dispatches each message to its
// recipients. Delivery failures are logged and the message is dropped rather
// than requeued, so one bad address cannot wedge the queue.
type Reader struct {
	RMQ    *rabbit.Client
	mail   *mailer.Mailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client, mail *mailer.Mailer) *Reader {
	return &Reader{
		RMQ:  rmq,
		mail: mail,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification dispatch worker started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.NotificationMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("failed to unmarshal notification message: %s", string(body))
				return err
			}

			payload := notify.FromMessage(msg)
			zlog.Logger.Info().
				Str("type", msg.Type).
				Str("title", payload.Notification.Title).
				Str("screen", notify.ScreenPath(payload.Data)).
				Int("recipients", len(msg.Recipients)).
				Msg("dispatching notification")

			if err := r.mail.Send(payload.Notification.Title, payload.Notification.Body, msg.Recipients); err != nil {
				zlog.Logger.Warn().
					Err(err).
					Str("type", msg.Type).
					Msg("failed to deliver notification")
			}
			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification dispatch worker stopped")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
