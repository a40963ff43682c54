package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512

	// queueSize bounds the events waiting for one subscriber. A subscriber
	// that falls this far behind is evicted and has to reconnect.
	queueSize = 64
)

// Subscription is one WebSocket peer watching statement events for a ledger
// client. The peer never sends anything meaningful; inbound frames only keep
// the read deadline alive.
type Subscription struct {
	id       string
	clientID string
	conn     *websocket.Conn
	hub      *Hub
	queue    chan []byte

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// Subscribe registers conn with the hub under clientID and starts its
// delivery and keepalive loops. The subscription removes itself from the hub
// when the peer goes away.
func Subscribe(hub *Hub, conn *websocket.Conn, clientID string) *Subscription {
	s := &Subscription{
		id:       uuid.New().String(),
		clientID: clientID,
		conn:     conn,
		hub:      hub,
		queue:    make(chan []byte, queueSize),
	}
	hub.Register(s)
	go s.deliver()
	go s.watch()
	return s
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) LedgerClientID() string {
	return s.clientID
}

// Send queues an encoded event. A full queue evicts the subscription.
func (s *Subscription) Send(data []byte) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSubscriberClosed
	}
	select {
	case s.queue <- data:
		s.mu.RUnlock()
		return nil
	default:
	}
	s.mu.RUnlock()

	log.Warn().
		Str("subscriber_id", s.id).
		Str("client_id", s.clientID).
		Msg("WebSocket subscriber too slow, evicting")
	s.hub.Unregister(s)
	s.Close()
	return ErrSubscriberClosed
}

// Close stops delivery. The deliver loop sends a close frame once the queue
// drains.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	return nil
}

// watch reads until the peer disconnects, answering pongs
func (s *Subscription) watch() {
	defer func() {
		s.Close()
		s.hub.Unregister(s)
	}()

	s.conn.SetReadLimit(maxInboundSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("subscriber_id", s.id).
					Str("client_id", s.clientID).
					Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

// deliver writes queued events and pings; it owns every write on conn
func (s *Subscription) deliver() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("subscriber_id", s.id).
					Str("client_id", s.clientID).
					Msg("WebSocket write error")
				s.hub.Unregister(s)
				s.Close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.hub.Unregister(s)
				s.Close()
				return
			}
		}
	}
}
