package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventQuestionAsked    = "question_asked"
	EventPremiumActivated = "premium_activated"
	EventReferralRedeemed = "referral_redeemed"
	EventWorkoutCompleted = "workout_completed"
	EventProfileCompleted = "profile_completed"
	EventPaymentReceived  = "payment_received"
)

// QuestionEventPayload describes a consumed question for event consumers.
type QuestionEventPayload struct {
	UserID    int64 `json:"user_id"`
	Remaining int   `json:"remaining"`
	Premium   bool  `json:"premium"`
}

// PremiumEventPayload describes a premium activation.
type PremiumEventPayload struct {
	UserID int64  `json:"user_id"`
	Days   int    `json:"days"`
	Until  string `json:"until"`
	Source string `json:"source,omitempty"`
}

// ReferralEventPayload describes a redeemed referral code.
type ReferralEventPayload struct {
	ReferrerID int64  `json:"referrer_id"`
	ReferredID int64  `json:"referred_id"`
	Code       string `json:"code"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
