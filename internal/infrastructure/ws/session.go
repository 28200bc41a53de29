package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Session is one live subscriber attached to the hub.
type Session interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// connSession wraps a websocket connection. Writes are serialized with a
// mutex; gorilla/websocket allows at most one concurrent writer.
type connSession struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex
}

// NewSession wraps an upgraded connection into a hub session.
func NewSession(conn *websocket.Conn) Session {
	return &connSession{id: uuid.NewString(), conn: conn}
}

func (s *connSession) ID() string { return s.id }

func (s *connSession) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *connSession) Close() error {
	return s.conn.Close()
}
