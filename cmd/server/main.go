package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"rockfall/engine/internal/host"
	"rockfall/engine/internal/sim"
	"rockfall/engine/internal/telemetry"
	"rockfall/engine/logging"
	"rockfall/engine/logging/sinks"
)

func main() {
	configPath := flag.String("config", "", "path to the server YAML config")
	flag.Parse()

	cfg, err := host.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	severity, err := cfg.Severity()
	if err != nil {
		log.Fatalf("log severity: %v", err)
	}
	logCfg := logging.DefaultConfig()
	logCfg.MinimumSeverity = severity
	router := logging.NewRouter(nil, logCfg, []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, logCfg.Console)},
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := router.Close(ctx); err != nil {
			log.Printf("close log router: %v", err)
		}
	}()

	metrics := &logging.Metrics{}
	logger := telemetry.WrapLogger(log.Default())

	engine, err := sim.NewEngine(cfg.Sim, sim.Deps{
		Logger:    logger,
		Metrics:   telemetry.WrapMetrics(metrics),
		Publisher: router,
	})
	if err != nil {
		log.Fatalf("construct engine: %v", err)
	}

	for i := 0; i < cfg.Bots; i++ {
		id := fmt.Sprintf("bot-%d", i+1)
		if err := engine.SpawnShip(id, true); err != nil {
			log.Fatalf("spawn %s: %v", id, err)
		}
	}

	hub := newHub(engine, cfg, logger)

	if cfg.TuningPath != "" {
		tuning, err := host.LoadTuning(cfg.TuningPath)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
		if err := hub.ApplyTuning(tuning); err != nil {
			log.Fatalf("apply tuning: %v", err)
		}
		watcher, err := host.NewWatcher(cfg.TuningPath)
		if err != nil {
			log.Fatalf("watch tuning: %v", err)
		}
		defer watcher.Close()
		go watchTuning(hub, watcher, cfg.TuningPath, logger)
	}

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	mux := http.NewServeMux()
	registerRoutes(mux, hub, cfg, metrics)

	server := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("server listening on %s (tick rate %d, bots %d)", cfg.Listen, cfg.Sim.TickRate, cfg.Bots)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// watchTuning reloads the tuning file on every change event. A broken edit
// logs and keeps the previous tuning; the next valid save recovers.
func watchTuning(hub *Hub, watcher *host.Watcher, path string, logger telemetry.Logger) {
	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			tuning, err := host.LoadTuning(path)
			if err != nil {
				logger.Printf("reload tuning: %v", err)
				continue
			}
			if err := hub.ApplyTuning(tuning); err != nil {
				logger.Printf("apply tuning: %v", err)
				continue
			}
			logger.Printf("tuning reloaded from %s", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Printf("tuning watcher: %v", err)
		}
	}
}

func registerRoutes(mux *http.ServeMux, hub *Hub, cfg host.Config, metrics *logging.Metrics) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		data, err := json.Marshal(metrics.TelemetrySnapshot())
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		join, err := hub.Join()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		shipID := r.URL.Query().Get("id")
		if shipID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed for %s: %v", shipID, err)
			return
		}

		sub, snapshot, ok := hub.Subscribe(shipID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown ship")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		initial := stateMessage{Type: "state", ServerTime: time.Now().UnixMilli(), Snapshot: snapshot}
		data, err := json.Marshal(initial)
		if err != nil {
			log.Printf("marshal initial state for %s: %v", shipID, err)
			hub.Disconnect(shipID)
			return
		}
		if err := hub.writeTo(sub, data); err != nil {
			hub.Disconnect(shipID)
			return
		}

		readClient(hub, shipID, conn)
	})
}

// readClient pumps input messages into the command buffer until the
// connection drops.
func readClient(hub *Hub, shipID string, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(shipID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", shipID, err)
			continue
		}

		switch msg.Type {
		case "thrust":
			hub.StageCommand(sim.Command{
				ActorID: shipID,
				Type:    sim.CommandThrust,
				Thrust:  &sim.ThrustCommand{Magnitude: msg.Magnitude},
			})
		case "rotate":
			hub.StageCommand(sim.Command{
				ActorID: shipID,
				Type:    sim.CommandRotate,
				Rotate:  &sim.RotateCommand{Direction: msg.Direction},
			})
		case "fire":
			hub.StageCommand(sim.Command{ActorID: shipID, Type: sim.CommandFire})
		default:
			log.Printf("unknown message type %q from %s", msg.Type, shipID)
		}
	}
}
