package ws

import (
	"context"
	"sync"
	"time"

	"cargomarket_backend/internal/logger"
)

// Envelope - формат всех исходящих сообщений
type Envelope struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	At    time.Time `json:"at"`
}

type delivery struct {
	userID string
	msg    Envelope
}

// WebSocketManager держит подключения пользователей; у одного пользователя
// может быть несколько вкладок
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run обслуживает каналы до отмены ctx
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.closeAll()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			if manager.clients[client.ID] == nil {
				manager.clients[client.ID] = make(map[*Client]struct{})
			}
			manager.clients[client.ID][client] = struct{}{}
			manager.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.ID, "total", manager.GetClientCount())

		case client := <-manager.unregister:
			manager.remove(client)

		case d := <-manager.broadcast:
			manager.deliver(d)
		}
	}
}

// SendToUser ставит событие в очередь доставки всем подключениям пользователя.
// Не блокирует: при переполненной очереди событие теряется
func (manager *WebSocketManager) SendToUser(userID, event string, payload interface{}) {
	d := delivery{userID: userID, msg: Envelope{Event: event, Data: payload, At: time.Now().UTC()}}
	select {
	case manager.broadcast <- d:
	default:
		logger.Warn("ws broadcast queue full, event dropped", "user_id", userID, "event", event)
	}
}

// Register и Unregister не блокируются после остановки Run
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

func (manager *WebSocketManager) deliver(d delivery) {
	manager.mu.RLock()
	var slow []*Client
	for client := range manager.clients[d.userID] {
		select {
		case client.Send <- d.msg:
		default:
			slow = append(slow, client)
		}
	}
	manager.mu.RUnlock()

	// Медленный клиент отключается
	for _, client := range slow {
		manager.remove(client)
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	conns, ok := manager.clients[client.ID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.Send)
	if len(conns) == 0 {
		delete(manager.clients, client.ID)
	}
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	for userID, conns := range manager.clients {
		for client := range conns {
			close(client.Send)
		}
		delete(manager.clients, userID)
	}
}

// GetClientCount возвращает количество подключений
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	n := 0
	for _, conns := range manager.clients {
		n += len(conns)
	}
	return n
}

// IsClientConnected проверяет, подключен ли пользователь
func (manager *WebSocketManager) IsClientConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID]) > 0
}
