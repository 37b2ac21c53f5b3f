package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecosort/ecosort-be/internal/middleware"
	"github.com/ecosort/ecosort-be/internal/models"
)

const writeWait = 10 * time.Second

// feedClient wraps a connection with a write lock; gorilla/websocket allows
// only one concurrent writer per connection.
type feedClient struct {
	conn *websocket.Conn

	mu sync.Mutex
}

func (c *feedClient) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Feed pushes newly recorded submissions to connected dashboard clients over
// websockets.
type Feed struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*feedClient]bool
}

var _ SubmissionNotifier = (*Feed)(nil)

// NewFeed creates a feed that accepts upgrades from the allowed origins.
func NewFeed(allowedOrigins []string) *Feed {
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
		clients: make(map[*feedClient]bool),
	}
}

// Register attaches the feed endpoint to the mux.
func (f *Feed) Register(mux *http.ServeMux, authn *middleware.Authenticator) {
	mux.HandleFunc("/api/feed", authn.RequireRole(f.handle, models.RoleCollector, models.RoleAdmin))
}

func (f *Feed) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed upgrade failed: %v", err)
		return
	}
	client := &feedClient{conn: conn}

	f.mu.Lock()
	f.clients[client] = true
	f.mu.Unlock()

	// Reader loop only drains control frames; the feed is one-way.
	go func() {
		defer f.drop(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifySubmission broadcasts a submission to every connected client, dropping
// clients whose writes fail. Safe for concurrent use.
func (f *Feed) NotifySubmission(sub models.WasteSubmission) {
	f.mu.RLock()
	clients := make([]*feedClient, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(map[string]any{
			"type":       "submission",
			"submission": sub,
		}); err != nil {
			log.Printf("feed write failed: %v", err)
			f.drop(client)
		}
	}
}

func (f *Feed) drop(client *feedClient) {
	f.mu.Lock()
	delete(f.clients, client)
	f.mu.Unlock()
	client.conn.Close()
}
