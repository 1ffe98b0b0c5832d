package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Message is a frame sent to WebSocket clients. Type is "result" or
// "error" for replies to a convert request and "event" for broadcasts.
type Message struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) clientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.clientCount() >= s.cfg.MaxClients {
		http.Error(w, "Maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	s.clientsMutex.Lock()
	s.clients[c] = true
	s.clientsMutex.Unlock()

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, c)
		s.clientsMutex.Unlock()
	}()

	conn.SetReadLimit(s.cfg.MaxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warn("websocket read failed", "remote", r.RemoteAddr, "error", err)
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			if messageType != websocket.TextMessage {
				continue
			}
			if err := s.reply(c, data); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-s.stop:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// reply answers one convert request on the client's connection.
func (s *Server) reply(c *client, data []byte) error {
	var msg Message
	var req ConvertRequest
	if err := json.Unmarshal(data, &req); err != nil {
		msg = Message{Type: "error", Error: "Invalid JSON request"}
	} else if conv, _, err := s.convert(req); err != nil {
		msg = Message{Type: "error", Error: err.Error()}
	} else {
		msg = Message{Type: "result", Data: conv}
	}

	out, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, out)
}

func (s *Server) broadcast() {
	for {
		select {
		case event := <-s.events:
			s.mutex.Lock()
			s.eventBuffer[s.eventIndex] = event
			s.eventIndex = (s.eventIndex + 1) % len(s.eventBuffer)
			if s.eventCount < len(s.eventBuffer) {
				s.eventCount++
			}
			s.mutex.Unlock()

			s.broadcastMessage(Message{Type: "event", Data: event})
		case <-s.stop:
			return
		}
	}
}

func (s *Server) broadcastMessage(message Message) {
	s.clientsMutex.RLock()
	if len(s.clients) == 0 {
		s.clientsMutex.RUnlock()
		return
	}
	clientsCopy := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clientsCopy = append(clientsCopy, c)
	}
	s.clientsMutex.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("failed to marshal broadcast", "error", err)
		return
	}

	var failed []*client
	for _, c := range clientsCopy {
		if err := c.write(websocket.TextMessage, data); err != nil {
			c.conn.Close()
			failed = append(failed, c)
		}
	}

	if len(failed) > 0 {
		s.clientsMutex.Lock()
		for _, c := range failed {
			delete(s.clients, c)
		}
		s.clientsMutex.Unlock()
	}
}
