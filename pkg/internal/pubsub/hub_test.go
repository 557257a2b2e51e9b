package pubsub

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
)

func makeTestClient(h *Hub, id string) *Client {
	return &Client{Hub: h, Send: make(chan []byte, 8), ID: id}
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func TestHubRoomBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()

	inRoom := makeTestClient(h, "a")
	alsoInRoom := makeTestClient(h, "b")
	elsewhere := makeTestClient(h, "c")

	h.Join <- &Subscription{Client: inRoom, Room: EventRoom(1)}
	h.Join <- &Subscription{Client: alsoInRoom, Room: EventRoom(1)}
	h.Join <- &Subscription{Client: elsewhere, Room: EventRoom(2)}

	h.Publish(EventRoom(1), "new-poll", map[string]any{"id": 7})

	var pkg Package
	if err := jsoniter.Unmarshal(recv(t, inRoom), &pkg); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if pkg.Event != "new-poll" {
		t.Errorf("expected new-poll envelope, got %q", pkg.Event)
	}
	recv(t, alsoInRoom)

	select {
	case <-elsewhere.Send:
		t.Error("clients outside the room must not receive the broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := makeTestClient(h, "a")
	h.Join <- &Subscription{Client: client, Room: EventRoom(1)}
	h.Leave <- &Subscription{Client: client, Room: EventRoom(1)}

	h.Publish(EventRoom(1), "poll-updated", nil)

	select {
	case <-client.Send:
		t.Error("left clients must not receive broadcasts")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDetachRemovesFromAllRooms(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := makeTestClient(h, "a")
	h.Join <- &Subscription{Client: client, Room: EventRoom(1)}
	h.Join <- &Subscription{Client: client, Room: UserRoom(9)}

	h.Detach <- client

	if _, open := <-client.Send; open {
		t.Error("detach should close the client send queue")
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{Hub: h, Send: make(chan []byte), ID: "slow"}
	h.Join <- &Subscription{Client: slow, Room: EventRoom(1)}

	// Nobody reads slow.Send, so the delivery attempt must evict the client
	// instead of stalling the room. Only start reading once the hub has had
	// time to process the broadcast, otherwise the read itself would accept
	// the delivery.
	h.Publish(EventRoom(1), "poll-updated", nil)
	time.Sleep(100 * time.Millisecond)

	if _, open := <-slow.Send; open {
		t.Error("slow client should have been dropped and closed")
	}
}

func TestHubDetachAfterSlowDrop(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{Hub: h, Send: make(chan []byte), ID: "slow"}
	h.Join <- &Subscription{Client: slow, Room: EventRoom(1)}

	// First broadcast evicts the unread client and closes its queue; the
	// connection teardown then detaches the same client. The second close
	// must be a no-op, not a panic in the hub loop.
	h.Publish(EventRoom(1), "poll-updated", nil)
	time.Sleep(100 * time.Millisecond)

	h.Detach <- slow

	h.Publish(EventRoom(1), "poll-closed", nil)
	time.Sleep(100 * time.Millisecond)

	if _, open := <-slow.Send; open {
		t.Error("slow client queue should be closed after drop and detach")
	}
}

func TestHubSlowDropLeavesEveryRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{Hub: h, Send: make(chan []byte), ID: "slow"}
	h.Join <- &Subscription{Client: slow, Room: EventRoom(1)}
	h.Join <- &Subscription{Client: slow, Room: UserRoom(9)}

	// Evicting the client from one room must remove it from the other as
	// well, otherwise the next user-room broadcast sends on a closed queue.
	h.Publish(EventRoom(1), "poll-updated", nil)
	time.Sleep(100 * time.Millisecond)

	h.Publish(UserRoom(9), "new-notification", nil)
	time.Sleep(100 * time.Millisecond)

	if _, open := <-slow.Send; open {
		t.Error("slow client queue should be closed after eviction")
	}
}

func TestRoomNames(t *testing.T) {
	if EventRoom(12) != "event-12" {
		t.Errorf("unexpected event room name %q", EventRoom(12))
	}
	if UserRoom(5) != "user-5" {
		t.Errorf("unexpected user room name %q", UserRoom(5))
	}
}
