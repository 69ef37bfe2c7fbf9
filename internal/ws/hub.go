package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/agency-crm-backend/internal/goroutine"
)

// NotificationSaver интерфейс для сохранения уведомлений сотрудников организации в БД.
type NotificationSaver interface {
	CreateForOrganization(ctx context.Context, organizationID uuid.UUID, event string, data interface{}) error
}

// Hub управляет всеми WebSocket клиентами.
// Клиенты группируются по организации: события CRM видят все сотрудники агентства.
type Hub struct {
	mu                sync.RWMutex
	clients           map[uuid.UUID]map[*Client]struct{}
	register          chan *Client
	unregister        chan *Client
	broadcast         chan message
	notificationSaver NotificationSaver
	ctx               context.Context
}

type message struct {
	organizationID uuid.UUID
	payload        []byte
}

// NewHub создаёт новый хаб.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
		ctx:        ctx,
	}
}

// SetNotificationSaver устанавливает сервис для сохранения уведомлений.
func (h *Hub) SetNotificationSaver(saver NotificationSaver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notificationSaver = saver
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.organizationID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Notify отправляет событие всем подключённым сотрудникам организации
// и сохраняет уведомление в БД.
// Сообщение следует контракту WebSocket API: поле "type" содержит имя
// события, "data" — полезную нагрузку.
func (h *Hub) Notify(organizationID uuid.UUID, event string, data any) {
	payload := map[string]any{
		"type": event,
		"data": data,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("ws: не удалось сериализовать сообщение: %v\n", err)
		return
	}

	h.mu.RLock()
	saver := h.notificationSaver
	ctx := h.ctx
	h.mu.RUnlock()

	if saver != nil {
		// Сохраняем асинхронно, чтобы не блокировать отправку
		goroutine.SafeGo(func() {
			if err := saver.CreateForOrganization(ctx, organizationID, event, data); err != nil {
				fmt.Printf("ws: не удалось сохранить уведомление: %v\n", err)
			}
		})
	}

	h.broadcast <- message{organizationID: organizationID, payload: raw}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.organizationID]; !ok {
		h.clients[client.organizationID] = make(map[*Client]struct{})
	}
	h.clients[client.organizationID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.organizationID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.organizationID)
		}
	}
}

func (h *Hub) send(organizationID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[organizationID] {
		select {
		case client.send <- payload:
		default:
			c := client
			goroutine.SafeGo(c.Close)
		}
	}
}
