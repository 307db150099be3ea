package mqtt

import (
	"context"
	"log"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// IConsumer is the subscription surface a service consumes through; T is
// the message type the handler decodes.
type IConsumer[T any] interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler func(topic string, message paho.Message) error)
}

// Consumer subscribes to one topic filter on the shared client.
type Consumer struct {
	client  paho.Client
	topic   string
	handler func(topic string, message paho.Message) error
}

func NewConsumer(client paho.Client, topic string, handler func(topic string, message paho.Message) error) *Consumer {
	return &Consumer{client: client, topic: topic, handler: handler}
}

func (c *Consumer) SetHandler(handler func(topic string, message paho.Message) error) {
	c.handler = handler
}

// qosFor: pin updates ride QoS1 so a flaky bridge link redelivers rather
// than drops; everything else is fire-and-forget.
func qosFor(topic string) byte {
	if strings.HasPrefix(strings.TrimSpace(topic), "sensor/pin") {
		return 1
	}
	return 0
}

// ConsumeMessage subscribes and dispatches until the context closes.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	token := c.client.Subscribe(c.topic, qosFor(c.topic), func(_ paho.Client, message paho.Message) {
		if c.handler == nil {
			log.Printf("mqtt: no handler set for %s", c.topic)
			return
		}
		if err := c.handler(message.Topic(), message); err != nil {
			log.Printf("mqtt: handler error on %s: %v", message.Topic(), err)
		}
	})
	if token.Wait() && token.Error() != nil {
		log.Printf("mqtt: subscribe to %s failed: %v", c.topic, token.Error())
		return
	}
	log.Printf("mqtt: subscribed to %s", c.topic)

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}
