package pubsub

import (
	"fmt"
	"sync"

	"github.com/gofiber/contrib/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

// Room naming follows the client contract: one public room per event and one
// private room per signed-in user.
func EventRoom(eventId uint) string {
	return fmt.Sprintf("event-%d", eventId)
}

func UserRoom(accountId uint) string {
	return fmt.Sprintf("user-%d", accountId)
}

type Package struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type Message struct {
	Room string
	Data []byte
}

// Client is one connected websocket peer. It may sit in several rooms at once.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	ID   string

	closeOnce sync.Once
}

// closeSend shuts the send queue at most once. Both the detach path and the
// slow-consumer eviction end up here, in any order.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

type Subscription struct {
	Client *Client
	Room   string
}

type Hub struct {
	Broadcast chan *Message
	Join      chan *Subscription
	Leave     chan *Subscription
	Detach    chan *Client

	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Broadcast: make(chan *Message, 256),
		Join:      make(chan *Subscription),
		Leave:     make(chan *Subscription),
		Detach:    make(chan *Client),
		rooms:     make(map[string]map[*Client]bool),
	}
}

// H is the process-wide hub; main starts its Run loop.
var H = NewHub()

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.Join:
			peers := h.rooms[sub.Room]
			if peers == nil {
				peers = make(map[*Client]bool)
				h.rooms[sub.Room] = peers
			}
			peers[sub.Client] = true

		case sub := <-h.Leave:
			if peers := h.rooms[sub.Room]; peers != nil {
				delete(peers, sub.Client)
				if len(peers) == 0 {
					delete(h.rooms, sub.Room)
				}
			}

		case client := <-h.Detach:
			h.detach(client)

		case message := <-h.Broadcast:
			for client := range h.rooms[message.Room] {
				select {
				case client.Send <- message.Data:
				default:
					// Slow consumer, drop it rather than stall the room.
					// It must leave every room, not just this one, so a
					// later broadcast cannot send on its closed queue.
					h.detach(client)
				}
			}
		}
	}
}

func (h *Hub) detach(client *Client) {
	for room, peers := range h.rooms {
		if peers[client] {
			delete(peers, client)
			if len(peers) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.closeSend()
}

// Publish encodes an event envelope and multicasts it to everyone in room.
// Delivery is best-effort; the poll record itself is the source of truth.
func (h *Hub) Publish(room, event string, payload any) {
	data, err := jsoniter.Marshal(Package{Event: event, Payload: payload})
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("An error occurred when encoding broadcast payload...")
		return
	}

	select {
	case h.Broadcast <- &Message{Room: room, Data: data}:
	default:
		log.Warn().Str("room", room).Str("event", event).Msg("Broadcast backlog is full, message dropped...")
	}
}

// WritePump drains the send queue into the websocket connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("client", c.ID).Msg("Dropping client after write failure...")
			break
		}
	}
}
