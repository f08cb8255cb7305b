package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fortuna/courtside/internal/publisher"
)

// Server pushes odds refresh events to websocket subscribers. Events arrive
// on the Redis stream the odds service publishes to; a Redis outage stalls
// the push feed but never touches the REST routes.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	redis  *goredis.Client
}

// NewServer creates the websocket server. redis may be nil, leaving a hub
// with no event source (connections still work, nothing is pushed).
func NewServer(redis *goredis.Client, maxConnections int) *Server {
	return &Server{
		hub:   NewHub(maxConnections),
		redis: redis,
	}
}

// Start runs the hub, the stream consumer, and the HTTP listener. It blocks
// until the listener exits.
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run()
	if s.redis != nil {
		go s.consumeUpdates(ctx)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/odds", s.handleOdds)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("[websocket] server listening on :%s", port)
	return s.server.ListenAndServe()
}

func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	ServeWs(s.hub, w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// consumeUpdates tails the odds update stream and broadcasts each event.
// Read errors back off and retry; the loop exits with the context.
func (s *Server) consumeUpdates(ctx context.Context) {
	lastID := "$"
	for {
		res, err := s.redis.XRead(ctx, &goredis.XReadArgs{
			Streams: []string{publisher.OddsStream, lastID},
			Block:   30 * time.Second,
			Count:   16,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, goredis.Nil) {
				log.Printf("[websocket] stream read failed: %v", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					return
				}
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				raw, _ := msg.Values["data"].(string)
				var event publisher.UpdateEvent
				if err := json.Unmarshal([]byte(raw), &event); err != nil {
					log.Printf("[websocket] bad update event %s: %v", msg.ID, err)
					continue
				}
				s.hub.Broadcast(event)
			}
		}
	}
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
