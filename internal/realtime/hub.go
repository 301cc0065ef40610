package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"
)

const (
	hubQueueSize   = 256
	clientSendSize = 64
)

// Hub fans project events out to websocket clients. A single goroutine, Run,
// owns the room registry; everything else talks to it over channels.
type Hub struct {
	rooms      map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	kicks      chan kick
	done       chan struct{}
	now        func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, hubQueueSize),
		kicks:      make(chan kick, hubQueueSize),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for projectID, room := range h.rooms {
				for c := range room {
					close(c.send)
				}
				delete(h.rooms, projectID)
			}
			log.Printf("[realtime] hub stopped")
			return

		case c := <-h.register:
			room, ok := h.rooms[c.ProjectID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[c.ProjectID] = room
			}
			room[c] = struct{}{}
			h.sendPresence(c.ProjectID)

		case c := <-h.unregister:
			if h.remove(c) {
				h.sendPresence(c.ProjectID)
			}

		case k := <-h.kicks:
			removed := false
			for c := range h.rooms[k.projectID] {
				if c.UserID == k.userID {
					removed = h.remove(c) || removed
				}
			}
			if removed {
				h.sendPresence(k.projectID)
			}

		case msg := <-h.broadcast:
			h.fanOut(msg.projectID, msg.data)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Publish queues an event for every subscriber of the project. It never
// blocks the caller; events are dropped when the hub is saturated or stopped.
func (h *Hub) Publish(projectID, actorID int64, eventType string, payload any) {
	data, err := h.encode(projectID, actorID, eventType, payload)
	if err != nil {
		log.Printf("[realtime] failed to encode %s event: %v", eventType, err)
		return
	}

	select {
	case h.broadcast <- envelope{projectID: projectID, data: data}:
	case <-h.done:
	default:
		log.Printf("[realtime] dropped %s event for project %d: queue full", eventType, projectID)
	}
}

// Disconnect closes every connection the user holds on the project.
func (h *Hub) Disconnect(projectID, userID int64) {
	select {
	case h.kicks <- kick{projectID: projectID, userID: userID}:
	case <-h.done:
	default:
		log.Printf("[realtime] dropped disconnect of user %d from project %d: queue full", userID, projectID)
	}
}

// Register hands c to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) encode(projectID, actorID int64, eventType string, payload any) ([]byte, error) {
	ev := Event{Type: eventType, ProjectID: projectID, ActorID: actorID, SentAt: h.now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		ev.Payload = raw
	}
	return json.Marshal(ev)
}

// remove drops c from its room and closes its send channel, once.
func (h *Hub) remove(c *Client) bool {
	room, ok := h.rooms[c.ProjectID]
	if !ok {
		return false
	}
	if _, ok := room[c]; !ok {
		return false
	}

	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.ProjectID)
	}
	return true
}

func (h *Hub) fanOut(projectID int64, data []byte) {
	for c := range h.rooms[projectID] {
		select {
		case c.send <- data:
		default:
			log.Printf("[realtime] client %s on project %d is not keeping up, disconnecting", c.ID, projectID)
			h.remove(c)
		}
	}
}

func (h *Hub) sendPresence(projectID int64) {
	room := h.rooms[projectID]
	if len(room) == 0 {
		return
	}

	seen := make(map[int64]bool, len(room))
	users := make([]PresenceUser, 0, len(room))
	for c := range room {
		if seen[c.UserID] {
			continue
		}
		seen[c.UserID] = true
		users = append(users, PresenceUser{ID: c.UserID, Username: c.Username})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	data, err := h.encode(projectID, 0, EventPresence, map[string]any{"users": users})
	if err != nil {
		log.Printf("[realtime] failed to encode presence: %v", err)
		return
	}
	h.fanOut(projectID, data)
}
