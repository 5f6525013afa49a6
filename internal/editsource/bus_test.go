package editsource

import (
	"testing"
	"time"

	"github.com/nhle/modulesync/internal/model"
)

func receive(t *testing.T, s *Subscription) Notification {
	t.Helper()
	select {
	case n, ok := <-s.C():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	return Notification{}
}

func expectNothing(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case n, ok := <-s.C():
		if ok {
			t.Fatalf("unexpected notification: %+v", n)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_DeliversToCurrentSubscribers(t *testing.T) {
	b := NewBus(0, nil)
	a := b.Subscribe()
	defer a.Close()
	c := b.Subscribe()
	defer c.Close()

	sent := b.PublishUpdated(model.ContentAssignment, 42)

	for _, s := range []*Subscription{a, c} {
		got := receive(t, s)
		if got.ID != sent.ID || got.Action != ActionUpdated || got.ContentID != 42 {
			t.Fatalf("unexpected notification: %+v", got)
		}
	}
}

func TestPublish_SameIDDeliveredOnce(t *testing.T) {
	b := NewBus(time.Minute, nil)
	s := b.Subscribe()
	defer s.Close()

	n := b.PublishDeleted(model.ContentQuiz, 7)
	b.Publish(n)

	receive(t, s)
	expectNothing(t, s)
}

func TestSubscribe_ReceivesRetainedInOrder(t *testing.T) {
	b := NewBus(time.Minute, nil)

	first := b.PublishUpdated(model.ContentFile, 1)
	second := b.PublishPageDeleted("syllabus")
	third := b.PublishDeleted(model.ContentDiscussion, 3)

	late := b.Subscribe()
	defer late.Close()

	for _, want := range []Notification{first, second, third} {
		got := receive(t, late)
		if got.ID != want.ID {
			t.Fatalf("got %s, want %s", got.ID, want.ID)
		}
	}
	expectNothing(t, late)
}

func TestSubscribe_WithoutRetentionMissesEarlierNotifications(t *testing.T) {
	b := NewBus(0, nil)
	b.PublishUpdated(model.ContentAssignment, 1)

	late := b.Subscribe()
	defer late.Close()

	expectNothing(t, late)
}

func TestPublish_NeverBlocksOnIdleSubscriber(t *testing.T) {
	b := NewBus(0, nil)
	s := b.Subscribe()
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.PublishUpdated(model.ContentAssignment, int64(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a subscriber that is not reading")
	}

	for i := 0; i < 1000; i++ {
		if got := receive(t, s); got.ContentID != int64(i) {
			t.Fatalf("notification %d out of order: %d", i, got.ContentID)
		}
	}
}

func TestClose_ClosesChannelAndUnregisters(t *testing.T) {
	b := NewBus(0, nil)
	s := b.Subscribe()
	s.Close()
	s.Close()

	select {
	case _, ok := <-s.C():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed")
	}

	b.mu.Lock()
	n := len(b.subs)
	b.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestNotificationMatcher(t *testing.T) {
	page := Notification{Type: model.ContentPage, PageURL: "intro", ContentID: 9}
	if got := page.Matcher(); got != (model.ItemMatcher{Type: model.ContentPage, PageURL: "intro"}) {
		t.Fatalf("page matcher = %+v", got)
	}

	quiz := Notification{Type: model.ContentQuiz, ContentID: 9}
	m := quiz.Matcher()
	if !m.Matches(model.ModuleItem{Type: model.ItemTypeQuiz, ContentID: 9}) {
		t.Fatal("quiz matcher should match the quiz item")
	}
	if m.Matches(model.ModuleItem{Type: model.ItemTypeAssignment, ContentID: 9}) {
		t.Fatal("quiz matcher must not match an assignment with the same content id")
	}
}
