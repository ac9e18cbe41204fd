package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"hospital-assistant/pkg"
)

// Notifier wraps the LISTEN/NOTIFY mechanism in PostgreSQL.  The server
// notifies the channel whenever an assistance request is created so nurse
// dashboards can refresh without polling.
type Notifier struct {
	DB       *sql.DB
	ConnInfo string
	Channel  string
	Log      zerolog.Logger
}

// NewNotifier constructs a Notifier.  connInfo is the same DSN used to
// open the main pool; the listener needs its own connection.
func NewNotifier(db *sql.DB, connInfo, channel string, log zerolog.Logger) *Notifier {
	return &Notifier{DB: db, ConnInfo: connInfo, Channel: channel, Log: log}
}

// Notify publishes the request ID on the channel.
func (n *Notifier) Notify(ctx context.Context, requestID string) error {
	channel := pq.QuoteIdentifier(n.Channel)
	_, err := n.DB.ExecContext(ctx, fmt.Sprintf("NOTIFY %s, %s", channel, pq.QuoteLiteral(requestID)))
	return err
}

// NotifyingStore pairs the repository with the notifier so nurse
// dashboards learn about a request in the same call that creates it.  The
// notification is best effort: a NOTIFY failure does not fail the create.
type NotifyingStore struct {
	Repo     *Repository
	Notifier *Notifier
}

// CreateAssistanceRequest persists the request and publishes its ID.
func (s *NotifyingStore) CreateAssistanceRequest(ctx context.Context, req *pkg.AssistanceRequest) error {
	if err := s.Repo.CreateAssistanceRequest(ctx, req); err != nil {
		return err
	}
	if err := s.Notifier.Notify(ctx, req.ID); err != nil {
		s.Notifier.Log.Warn().Err(err).Str("request_id", req.ID).Msg("notify failed")
	}
	return nil
}

// Listen yields request IDs as they are published on the channel.  The
// returned channel closes when ctx is cancelled.
func (n *Notifier) Listen(ctx context.Context) (<-chan string, error) {
	listener := pq.NewListener(n.ConnInfo, time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			n.Log.Warn().Err(err).Int("event", int(event)).Msg("pq listener event")
		}
	})
	if err := listener.Listen(n.Channel); err != nil {
		_ = listener.Close()
		return nil, err
	}

	ch := make(chan string)
	go func() {
		defer func() {
			_ = listener.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case notification := <-listener.Notify:
				if notification == nil {
					// Connection loss; pq reconnects and re-listens.
					continue
				}
				select {
				case ch <- notification.Extra:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
