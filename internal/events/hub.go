package events

import (
	"context"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

type Kind string

const (
	KindWeeklyTasks Kind = "weekly_tasks"
	KindDailyTasks  Kind = "daily_tasks"
	KindTasks       Kind = "tasks"
	KindKeyResults  Kind = "key_results"
)

type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeEmpty         Outcome = "empty"
	OutcomeUpstreamError Outcome = "upstream_error"
)

// Suggestion describes one finished generate-extract-normalize run.
type Suggestion struct {
	Kind         Kind
	UserID       int
	Count        int
	Strategy     string
	Outcome      Outcome
	ParentTaskID string
	Duration     time.Duration
}

type Handler func(ctx context.Context, s Suggestion)

// Hub fans suggestion results out to subscribers, in subscription order.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
	logger *charmlog.Logger
}

type subscription struct {
	id int
	fn Handler
}

func NewHub(logger *charmlog.Logger) *Hub {
	return &Hub{logger: logger}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn Handler) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber synchronously. A panicking subscriber
// is logged and skipped.
func (h *Hub) Publish(ctx context.Context, s Suggestion) {
	h.mu.RLock()
	subs := append([]subscription(nil), h.subs...)
	h.mu.RUnlock()

	for _, sub := range subs {
		h.deliver(ctx, sub, s)
	}
}

func (h *Hub) deliver(ctx context.Context, sub subscription, s Suggestion) {
	defer func() {
		if r := recover(); r != nil && h.logger != nil {
			h.logger.Error("suggestion subscriber panicked", "subscriber", sub.id, "panic", r)
		}
	}()
	sub.fn(ctx, s)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
