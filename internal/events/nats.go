package events

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

const SubjectPrefix = "news.articles"

// Subject для ключа. Пустой ключ или "*" - подписка на все статьи
func Subject(key string) string {
	if key == "" || key == "*" {
		return SubjectPrefix + ".*"
	}

	return SubjectPrefix + "." + key
}

// Шина уведомлений поверх NATS
type NATSBus struct {
	conn *nats.Conn
}

func NewNATSBus(url string) (*NATSBus, error) {
	conn, err := nats.Connect(url, nats.Name("news-portal"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &NATSBus{conn: conn}, nil
}

func (b *NATSBus) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.conn.Publish(Subject(event.Key), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	return nil
}

// Subscribe подписывает handler на события по ключу. Возвращает функцию отписки
func (b *NATSBus) Subscribe(key string, handler func(Event)) (func() error, error) {
	sub, err := b.conn.Subscribe(Subject(key), func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("[ERROR] failed to decode event from %s: %v", msg.Subject, err)
			return
		}

		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	return sub.Unsubscribe, nil
}

// Close дожидается отправки буфера и закрывает соединение
func (b *NATSBus) Close() error {
	return b.conn.Drain()
}
