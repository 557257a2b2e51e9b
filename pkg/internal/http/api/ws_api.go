package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/wonderfly/host-hub/pkg/internal/models"
	"github.com/wonderfly/host-hub/pkg/internal/pubsub"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

// handleSocket keeps one connection subscribed to the rooms it asks for.
// Anyone may sit in public event rooms; the private user room requires the
// account behind the token, matching the REST surface.
func handleSocket(conn *websocket.Conn) {
	user, authenticated := conn.Locals("user").(models.Account)

	client := &pubsub.Client{
		Hub:  pubsub.H,
		Conn: conn,
		Send: make(chan []byte, 32),
		ID:   uuid.NewString(),
	}

	go client.WritePump()
	defer func() {
		pubsub.H.Detach <- client
	}()

	if authenticated {
		pubsub.H.Join <- &pubsub.Subscription{Client: client, Room: pubsub.UserRoom(user.ID)}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in struct {
			Event   string `json:"event"`
			Payload uint   `json:"payload"`
		}
		if err := jsoniter.Unmarshal(raw, &in); err != nil {
			log.Debug().Err(err).Str("client", client.ID).Msg("Ignoring malformed socket message...")
			continue
		}

		switch in.Event {
		case "join-event":
			if _, err := services.GetEvent(in.Payload); err != nil {
				continue
			}
			pubsub.H.Join <- &pubsub.Subscription{Client: client, Room: pubsub.EventRoom(in.Payload)}
		case "leave-event":
			pubsub.H.Leave <- &pubsub.Subscription{Client: client, Room: pubsub.EventRoom(in.Payload)}
		}
	}
}
