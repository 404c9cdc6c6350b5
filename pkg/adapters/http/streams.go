package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/launchplan/pkg/domain"
)

// AllPlans is the topic receiving events of every plan.
const AllPlans = "*"

// StreamManager fans lifecycle events out to SSE subscribers, by plan name.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // plan -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for topic. The returned func unsubscribes and closes it.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, present := subs[ch]; !present {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast sends msg to the subscribers of plan and of AllPlans.
func (sm *StreamManager) Broadcast(plan string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, topic := range []string{plan, AllPlans} {
		for ch := range sm.subscribers[topic] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: client buffer full, dropping message", "plan", plan)
			}
		}
		if plan == AllPlans {
			break
		}
	}
}

// Hooks returns lifecycle hooks publishing every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPlanBuilt: func(_ context.Context, e *domain.PlanEvent) {
			payload := struct {
				*domain.PlanEvent
				Error string `json:"error,omitempty"`
			}{PlanEvent: e}
			if e.Err != nil {
				payload.Error = e.Err.Error()
			}
			sm.publish(e.Plan, payload)
		},
		OnTemplateExpanded: func(_ context.Context, e *domain.ArtifactEvent) { sm.publish(e.Plan, e) },
		OnNodeStart:        func(_ context.Context, e *domain.NodeEvent) { sm.publish(e.Plan, e) },
	}
}

func (sm *StreamManager) publish(plan string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("SSE: event encode failed", "error", err)
		return
	}
	sm.Broadcast(plan, string(data))
}
