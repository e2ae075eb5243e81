// Package events carries "operation fulfilled" notifications from the API layer to whoever
// registered for them, so producers never import their consumers.
package events

import (
	"fmt"

	evbus "github.com/asaskevich/EventBus"
)

// Bus is the subset of the event bus the client uses.
type Bus interface {
	Publish(topic string, args ...interface{})
	Subscribe(topic string, fn interface{}) error
	Unsubscribe(topic string, handler interface{}) error
}

// New creates a synchronous event bus.
func New() Bus {
	return evbus.New()
}

// Fulfilled is the topic published after operation completes successfully.
func Fulfilled(operation string) string {
	return fmt.Sprintf("api:%s:fulfilled", operation)
}

// OnFulfilled registers fn for successful completions of operation. The payload is the decoded
// result of the operation.
func OnFulfilled(bus Bus, operation string, fn func(payload any)) error {
	if err := bus.Subscribe(Fulfilled(operation), fn); err != nil {
		return fmt.Errorf("events.OnFulfilled: %w", err)
	}
	return nil
}

// PublishFulfilled announces that operation completed with payload.
func PublishFulfilled(bus Bus, operation string, payload any) {
	bus.Publish(Fulfilled(operation), payload)
}
