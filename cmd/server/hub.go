package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rockfall/engine/internal/host"
	"rockfall/engine/internal/sim"
	"rockfall/engine/internal/telemetry"
)

const writeWait = 10 * time.Second

type joinResponse struct {
	ID       string       `json:"id"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

type stateMessage struct {
	Type       string       `json:"type"`
	ServerTime int64        `json:"serverTime"`
	Snapshot   sim.Snapshot `json:"snapshot"`
	Events     []sim.Event  `json:"events,omitempty"`
}

type clientMessage struct {
	Type      string  `json:"type"`
	Magnitude float64 `json:"magnitude"`
	Direction float64 `json:"direction"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub owns the engine and the websocket subscribers. The engine itself is
// not safe for concurrent mutation, so every Step, Snapshot, and roster
// change happens under hub.mu; only Apply stages commands lock-free.
type Hub struct {
	mu          sync.Mutex
	engine      *sim.Engine
	cfg         host.Config
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	logger      telemetry.Logger
}

func newHub(engine *sim.Engine, cfg host.Config, logger telemetry.Logger) *Hub {
	return &Hub{
		engine:      engine,
		cfg:         cfg,
		subscribers: make(map[string]*subscriber),
		logger:      logger,
	}
}

// Join spawns a player ship and returns its id with the current field.
func (h *Hub) Join() (joinResponse, error) {
	id := fmt.Sprintf("ship-%d", h.nextID.Add(1))

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.engine.SpawnShip(id, false); err != nil {
		return joinResponse{}, err
	}
	return joinResponse{ID: id, Snapshot: h.engine.Snapshot()}, nil
}

// Subscribe attaches a connection to an existing ship. A second connection
// for the same ship replaces the first.
func (h *Hub) Subscribe(shipID string, conn *websocket.Conn) (*subscriber, sim.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := h.engine.Snapshot()
	known := false
	for _, ship := range snapshot.Ships {
		if ship.ID == shipID {
			known = true
			break
		}
	}
	if !known {
		return nil, sim.Snapshot{}, false
	}

	if existing, ok := h.subscribers[shipID]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	h.subscribers[shipID] = sub
	return sub, snapshot, true
}

// Disconnect drops the subscriber and despawns the ship.
func (h *Hub) Disconnect(shipID string) {
	h.mu.Lock()
	sub, subOK := h.subscribers[shipID]
	if subOK {
		delete(h.subscribers, shipID)
	}
	err := h.engine.DespawnShip(shipID)
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	if err != nil {
		h.logger.Printf("despawn %s: %v", shipID, err)
	}
}

// StageCommand queues input for the next tick. The engine's command buffer
// is safe for concurrent producers, so no hub lock is taken.
func (h *Hub) StageCommand(cmd sim.Command) {
	if err := h.engine.Apply([]sim.Command{cmd}); err != nil {
		h.logger.Printf("stage command for %s: %v", cmd.ActorID, err)
	}
}

// ApplyTuning pushes reloaded steering and wave knobs into the engine.
func (h *Hub) ApplyTuning(tuning host.Tuning) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.SetTuning(tuning.Steering, tuning.Waves)
}

// RunSimulation drives the fixed tick loop until stop closes. Snapshots go
// out every cfg.SnapshotEvery ticks; gameplay events ride along with the
// next broadcast.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(h.cfg.Sim.TickRate))
	defer ticker.Stop()

	var pending []sim.Event
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			h.engine.Step()
			pending = append(pending, h.engine.DrainEvents()...)
			tick := h.engine.Tick()
			var snapshot sim.Snapshot
			broadcast := tick%uint64(h.cfg.SnapshotEvery) == 0
			if broadcast {
				snapshot = h.engine.Snapshot()
			}
			h.mu.Unlock()

			if broadcast {
				h.broadcastState(snapshot, pending)
				pending = nil
			}
		}
	}
}

func (h *Hub) broadcastState(snapshot sim.Snapshot, events []sim.Event) {
	msg := stateMessage{
		Type:       "state",
		ServerTime: time.Now().UnixMilli(),
		Snapshot:   snapshot,
		Events:     events,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.logger.Printf("send update to %s: %v", id, err)
			h.Disconnect(id)
		}
	}
}

func (h *Hub) writeTo(sub *subscriber, data []byte) error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sub.conn.WriteMessage(websocket.TextMessage, data)
}
