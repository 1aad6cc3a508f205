package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kovalyov-valentin/news-portal/internal/events"
)

// Сколько событий держим для медленного клиента, дальше отбрасываем
const liveBuffer = 16

type Subscriber interface {
	Subscribe(key string, handler func(events.Event)) (func() error, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Фронтенд портала живет на другом домене
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WithSubscriber включает живые обновления по websocket. Без подписчика маршруты отвечают 503
func (s *Server) WithSubscriber(subscriber Subscriber) *Server {
	s.subscriber = subscriber
	return s
}

// Пустой slug - события по всем статьям
func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	if s.subscriber == nil {
		respondWithJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "live updates are disabled"})
		return
	}

	key := mux.Vars(r)["slug"]
	queue := make(chan events.Event, liveBuffer)

	// Подписываемся до апгрейда, чтобы не потерять события сразу после рукопожатия
	unsubscribe, err := s.subscriber.Subscribe(key, func(event events.Event) {
		select {
		case queue <- event:
		default:
			log.Printf("[WARN] live client is too slow, dropping %s event for %s", event.Type, event.Key)
		}
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	defer func() {
		if err := unsubscribe(); err != nil {
			log.Printf("[ERROR] failed to unsubscribe live client: %v", err)
		}
	}()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] failed to upgrade to websocket: %v", err)
		return
	}
	defer conn.Close()

	// Читаем только чтобы заметить отключение клиента
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-queue:
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[ERROR] failed to send live event: %v", err)
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
