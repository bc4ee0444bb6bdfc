package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Cross-component signal topics. Fire-and-forget, in-process only.
const (
	TopicPinClicked   = "pin-clicked"
	TopicAuthLogin    = "auth-login"
	TopicAuthLogout   = "auth-logout"
	TopicShowMyEvents = "show-my-events"
	TopicMapReady     = "map-ready"
)

// PinClickedPayload carries a clicked feature's property bag and
// normalized coordinates.
type PinClickedPayload struct {
	Properties map[string]interface{} `json:"properties"`
	Lng        float64                `json:"lng"`
	Lat        float64                `json:"lat"`
}

// AuthChangedPayload is published on auth-login and auth-logout.
type AuthChangedPayload struct {
	Email string `json:"email,omitempty"`
}

// Bus is a typed wrapper over an in-process watermill channel: each topic
// has a defined payload shape instead of ad-hoc event objects.
type Bus struct {
	channel *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		channel: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
	}
}

func (b *Bus) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding %s payload: %w", topic, err)
	}
	return b.channel.Publish(topic, message.NewMessage(watermill.NewUUID(), data))
}

// Subscribe registers a handler for a topic. Handlers run on their own
// goroutine and acknowledge every message; there is no reply path.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	messages, err := b.channel.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("error subscribing to %s: %w", topic, err)
	}
	go func() {
		for msg := range messages {
			handler(msg.Payload)
			msg.Ack()
		}
	}()
	return nil
}

// SubscribePinClicked decodes pin-clicked payloads before dispatch.
func (b *Bus) SubscribePinClicked(ctx context.Context, handler func(PinClickedPayload)) error {
	return b.Subscribe(ctx, TopicPinClicked, func(payload []byte) {
		var decoded PinClickedPayload
		if err := json.Unmarshal(payload, &decoded); err != nil {
			log.Printf("Error decoding pin-clicked payload: %v", err)
			return
		}
		handler(decoded)
	})
}

func (b *Bus) Close() error {
	return b.channel.Close()
}
