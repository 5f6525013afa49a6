package editsource

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/united-manufacturing-hub/expiremap/v2/pkg/expiremap"
	"go.uber.org/zap"

	"github.com/nhle/modulesync/internal/metrics"
	"github.com/nhle/modulesync/internal/model"
)

// Action says what happened to the content.
type Action string

const (
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Notification announces that a piece of course content changed elsewhere.
type Notification struct {
	// ID identifies the notification. Subscribers receive each ID at most once.
	ID uuid.UUID

	Action    Action
	Type      model.ContentType
	ContentID int64

	// PageURL identifies pages, which have no stable numeric id here.
	PageURL string

	PublishedAt time.Time

	seq uint64
}

// Matcher returns the item matcher for the announced content.
func (n Notification) Matcher() model.ItemMatcher {
	if n.Type == model.ContentPage {
		return model.ItemMatcher{Type: n.Type, PageURL: n.PageURL}
	}
	return model.ItemMatcher{Type: n.Type, ContentID: n.ContentID}
}

// Bus fans edit notifications out to subscribers. Published notifications
// are retained for a while so subscribers created later still see them.
type Bus struct {
	mu       sync.Mutex
	retained *expiremap.ExpireMap[uuid.UUID, Notification]
	subs     map[*Subscription]struct{}
	seq      uint64
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewBus creates a bus that retains notifications for retention. A zero
// retention delivers only to current subscribers.
func NewBus(retention time.Duration, log *zap.SugaredLogger) *Bus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	b := &Bus{
		subs: make(map[*Subscription]struct{}),
		now:  time.Now,
		log:  log,
	}
	if retention > 0 {
		cull := retention
		if cull > time.Minute {
			cull = time.Minute
		}
		b.retained = expiremap.NewEx[uuid.UUID, Notification](cull, retention)
	}
	return b
}

// Publish delivers n to every subscriber and retains it. A zero ID is
// replaced with a fresh one. Publish never blocks on slow subscribers.
func (b *Bus) Publish(n Notification) Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.PublishedAt.IsZero() {
		n.PublishedAt = b.now()
	}
	b.seq++
	n.seq = b.seq

	if b.retained != nil {
		b.retained.Set(n.ID, n)
	}
	for sub := range b.subs {
		sub.offer(n)
	}

	metrics.NotificationPublished(string(n.Action))
	b.log.Debugw("published notification",
		"id", n.ID, "action", n.Action, "type", n.Type,
		"content_id", n.ContentID, "page_url", n.PageURL,
		"subscribers", len(b.subs),
	)
	return n
}

// PublishUpdated announces that content of type t with id contentID changed.
func (b *Bus) PublishUpdated(t model.ContentType, contentID int64) Notification {
	return b.Publish(Notification{Action: ActionUpdated, Type: t, ContentID: contentID})
}

// PublishDeleted announces that content of type t with id contentID was deleted.
func (b *Bus) PublishDeleted(t model.ContentType, contentID int64) Notification {
	return b.Publish(Notification{Action: ActionDeleted, Type: t, ContentID: contentID})
}

// PublishPageUpdated announces that the page at url changed.
func (b *Bus) PublishPageUpdated(url string) Notification {
	return b.Publish(Notification{Action: ActionUpdated, Type: model.ContentPage, PageURL: url})
}

// PublishPageDeleted announces that the page at url was deleted.
func (b *Bus) PublishPageDeleted(url string) Notification {
	return b.Publish(Notification{Action: ActionDeleted, Type: model.ContentPage, PageURL: url})
}

// Subscribe registers a new subscriber. Retained notifications are queued
// for it immediately, oldest first.
func (b *Bus) Subscribe() *Subscription {
	s := newSubscription(b)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[s] = struct{}{}

	if b.retained != nil {
		var pending []Notification
		b.retained.Range(func(_ uuid.UUID, n Notification) bool {
			pending = append(pending, n)
			return true
		})
		sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })
		for _, n := range pending {
			s.offer(n)
		}
	}

	go s.pump()
	return s
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

// Subscription receives notifications from a Bus.
type Subscription struct {
	bus *Bus

	mu        sync.Mutex
	delivered map[uuid.UUID]struct{}
	queue     []Notification

	wake chan struct{}
	out  chan Notification
	done chan struct{}
	once sync.Once
}

func newSubscription(b *Bus) *Subscription {
	return &Subscription{
		bus:       b,
		delivered: make(map[uuid.UUID]struct{}),
		wake:      make(chan struct{}, 1),
		out:       make(chan Notification),
		done:      make(chan struct{}),
	}
}

// C returns the delivery channel. It is closed after Close.
func (s *Subscription) C() <-chan Notification {
	return s.out
}

// Close stops delivery and unregisters the subscription.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.unsubscribe(s)
		close(s.done)
	})
}

// offer queues n unless this subscription has already seen its ID.
func (s *Subscription) offer(n Notification) {
	s.mu.Lock()
	if _, seen := s.delivered[n.ID]; seen {
		s.mu.Unlock()
		return
	}
	s.delivered[n.ID] = struct{}{}
	s.queue = append(s.queue, n)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump moves queued notifications to the delivery channel in order.
func (s *Subscription) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		n := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- n:
		case <-s.done:
			return
		}
	}
}
