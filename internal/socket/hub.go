// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Notification messages
	MessageNotification      MessageType = "notification"
	MessageNotificationRead  MessageType = "notification_read"
	MessageNotificationCount MessageType = "notification_count"

	// Claim messages
	MessageClaimCreated  MessageType = "claim_created"
	MessageClaimApproved MessageType = "claim_approved"
	MessageClaimRejected MessageType = "claim_rejected"

	// Team messages
	MessageTeamMemberJoined MessageType = "team_member_joined"
	MessageRosterUpdated    MessageType = "roster_updated"
	MessageJoinCodeRotated  MessageType = "join_code_rotated"

	// Account presence
	MessageAccountOnline  MessageType = "account_online"
	MessageAccountOffline MessageType = "account_offline"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
	MessageAck  MessageType = "ack"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients indexed by account ID for direct messaging
	accountClients map[string]map[*Client]bool

	// Clients indexed by room for broadcasting
	roomClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Broadcast to all clients
	broadcast chan []byte

	// Broadcast to specific room
	roomBroadcast chan *RoomMessage

	// Direct message to a specific account
	directMessage chan *DirectMessage

	mu sync.RWMutex
}

// RoomMessage represents a message to be sent to a specific room
type RoomMessage struct {
	Room    string
	Message []byte
	Exclude string // Account ID to exclude from broadcast
}

// DirectMessage represents a message to be sent to a specific account
type DirectMessage struct {
	AccountID string
	Message   []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		accountClients: make(map[string]map[*Client]bool),
		roomClients:    make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan []byte, 256),
		roomBroadcast:  make(chan *RoomMessage, 256),
		directMessage:  make(chan *DirectMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToAll(message)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case dm := <-h.directMessage:
			h.sendToAccount(dm)

		case <-pingTicker.C:
			h.pingClients()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.accountClients[client.AccountID] == nil {
		h.accountClients[client.AccountID] = make(map[*Client]bool)
	}
	h.accountClients[client.AccountID][client] = true

	log.Printf("[Hub] ✅ Client registered: account=%s, id=%s, total_clients=%d",
		client.AccountID, client.ID, len(h.clients))

	go h.BroadcastAccountStatus(client.AccountID, true)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		if clients, ok := h.accountClients[client.AccountID]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.accountClients, client.AccountID)
				// Account went offline (no more connections)
				go h.BroadcastAccountStatus(client.AccountID, false)
			}
		}

		for room := range client.Rooms {
			if clients, ok := h.roomClients[room]; ok {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.roomClients, room)
				}
			}
		}

		close(client.Send)
		log.Printf("[Hub] ❌ Client disconnected: account=%s, id=%s, total_clients=%d",
			client.AccountID, client.ID, len(h.clients))
	}
}

func (h *Hub) broadcastToAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.roomClients[rm.Room]
	if !ok {
		return
	}

	for client := range clients {
		if rm.Exclude != "" && client.AccountID == rm.Exclude {
			continue
		}
		select {
		case client.Send <- rm.Message:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

func (h *Hub) sendToAccount(dm *DirectMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.accountClients[dm.AccountID]
	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.Send <- dm.Message:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      MessagePing,
		Timestamp: time.Now(),
	}
	data, _ := json.Marshal(msg)

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

// ============================================
// Public Methods for Room Management
// ============================================

// JoinRoom adds a client to a room
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true

	log.Printf("[Hub] 👥 Client joined room: account=%s, room=%s", client.AccountID, room)
}

// LeaveRoom removes a client from a room
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
}

// ============================================
// Public Methods for Sending Messages
// ============================================

// SendToAccount sends a message to every connection of an account
func (h *Hub) SendToAccount(accountID string, msgType MessageType, payload map[string]interface{}) {
	msg := Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}

	h.directMessage <- &DirectMessage{
		AccountID: accountID,
		Message:   data,
	}
}

// SendToRoom broadcasts a message to all clients in a room
func (h *Hub) SendToRoom(room string, msgType MessageType, payload map[string]interface{}, excludeAccountID string) {
	msg := Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}

	h.roomBroadcast <- &RoomMessage{
		Room:    room,
		Message: data,
		Exclude: excludeAccountID,
	}
}

// BroadcastAccountStatus broadcasts online/offline status
func (h *Hub) BroadcastAccountStatus(accountID string, online bool) {
	msgType := MessageAccountOffline
	if online {
		msgType = MessageAccountOnline
	}

	msg := Message{
		Type: msgType,
		Payload: map[string]interface{}{
			"accountId": accountID,
			"online":    online,
		},
		Timestamp: time.Now(),
	}
	data, _ := json.Marshal(msg)
	h.broadcast <- data
}

// ============================================
// Query Methods
// ============================================

// IsAccountOnline checks if an account has at least one live connection
func (h *Hub) IsAccountOnline(accountID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.accountClients[accountID]
	return ok
}

// GetConnectedClientsCount returns total connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
