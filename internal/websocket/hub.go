package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans redis pub/sub events out to a user's open websocket
// connections. Connections are keyed by email — the same identity the
// chat and lesson subsystems publish under — and one pub/sub
// subscription per user is shared by all their tabs.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	jwtSecret   []byte
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	email, _ := claims["email"].(string)
	email = strings.ToLower(email)
	if email == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(email, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(email, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[email] = append(h.connections[email], conn)

	// First connection for this user starts the shared subscription
	if len(h.connections[email]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[email] = cancel
		go h.subscribeToPubSub(ctx, email)
	}

	log.Printf("WebSocket connected: %s (total: %d)", email, len(h.connections[email]))
}

func (h *Hub) unregisterConnection(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[email]
	for i, c := range conns {
		if c == conn {
			h.connections[email] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[email]) == 0 {
		delete(h.connections, email)
		if cancel, ok := h.cancelFuncs[email]; ok {
			cancel()
			delete(h.cancelFuncs, email)
		}
	}

	log.Printf("WebSocket disconnected: %s", email)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, email string) {
	channel := "user_updates:" + email
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(email, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(email string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[email] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// SendToUser sends a message directly to a user's local connections,
// bypassing pub/sub.
func (h *Hub) SendToUser(email string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(strings.ToLower(email), data)
}
