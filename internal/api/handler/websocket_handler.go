package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"smart_toll/internal/domain"
	"smart_toll/internal/observability"
	"smart_toll/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 5 * time.Second
	forwardTimeout = 5 * time.Second

	maxPendingPerClient = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the mobile app connects from arbitrary origins
	},
}

// ReadingForwarder hands a device reply to the rendezvous service.
type ReadingForwarder interface {
	Forward(ctx context.Context, correlationID string, reading domain.GeoReading) error
}

type reporterClient struct {
	conn  *websocket.Conn
	email string

	writeMu sync.Mutex

	mu         sync.Mutex
	pendingIDs []string // ids sent to this device and not yet answered, oldest first
}

func (c *reporterClient) send(cmd domain.ReporterCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *reporterClient) remember(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingIDs = append(c.pendingIDs, id)
	if len(c.pendingIDs) > maxPendingPerClient {
		c.pendingIDs = c.pendingIDs[len(c.pendingIDs)-maxPendingPerClient:]
	}
}

// take returns id if this device was sent it, otherwise the oldest request it has not answered.
func (c *reporterClient) take(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" {
		for i, p := range c.pendingIDs {
			if p == id {
				c.pendingIDs = append(c.pendingIDs[:i], c.pendingIDs[i+1:]...)
				return id
			}
		}
		// only ids this device was asked for
		return ""
	}
	if len(c.pendingIDs) == 0 {
		return ""
	}
	id = c.pendingIDs[0]
	c.pendingIDs = c.pendingIDs[1:]
	return id
}

// deviceReply accepts both the correlated form and the legacy {latitude, longitude} body.
type deviceReply struct {
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	CorrelationID string   `json:"correlation_id"`
}

// GeoReporterHub keeps the websocket connections of Geo Reporter Clients and relays
// position requests to them and their replies back to the rendezvous service.
type GeoReporterHub struct {
	forwarder ReadingForwarder

	mu      sync.RWMutex
	clients map[*reporterClient]struct{}
}

func NewGeoReporterHub(forwarder ReadingForwarder) *GeoReporterHub {
	return &GeoReporterHub{
		forwarder: forwarder,
		clients:   make(map[*reporterClient]struct{}),
	}
}

func (h *GeoReporterHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GET /ws?email=
func (h *GeoReporterHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("GeoReporterHub: failed to upgrade to WebSocket: %v", err)
		return
	}
	client := &reporterClient{conn: conn, email: service.NormalizeEmail(c.Query("email"))}
	h.register(client)
	go h.readLoop(client)
}

// GET /trigger?correlation_id=&email=
func (h *GeoReporterHub) Trigger(c *gin.Context) {
	id := c.Query("correlation_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "correlation_id is required"})
		return
	}
	targets := h.targets(service.NormalizeEmail(c.Query("email")))
	if len(targets) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no geo reporter connected"})
		return
	}

	cmd := domain.ReporterCommand{Command: domain.CommandSendLatLon, CorrelationID: id}
	sent := 0
	for _, client := range targets {
		client.remember(id)
		if err := client.send(cmd); err != nil {
			log.Printf("GeoReporterHub: error writing to client: %v", err)
			h.unregister(client)
			continue
		}
		sent++
	}
	if sent == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no geo reporter reachable"})
		return
	}
	log.WithField("correlation_id", id).Printf("GeoReporterHub: sendlatlon sent to %d client(s)", sent)
	c.JSON(http.StatusOK, gin.H{"message": "WebSocket message sent", "clients": sent})
}

// Close disconnects every client.
func (h *GeoReporterHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.conn.Close()
		delete(h.clients, client)
	}
	observability.BridgeClients.Set(0)
}

// targets are the owner's devices. Only a trigger without an owner goes to every device.
func (h *GeoReporterHub) targets(email string) []*reporterClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var targets []*reporterClient
	for client := range h.clients {
		if email == "" || client.email == email {
			targets = append(targets, client)
		}
	}
	return targets
}

func (h *GeoReporterHub) register(client *reporterClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	observability.BridgeClients.Set(float64(n))
	log.Printf("GeoReporterHub: client connected (email=%q). Total: %d", client.email, n)
}

func (h *GeoReporterHub) unregister(client *reporterClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		client.conn.Close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		observability.BridgeClients.Set(float64(n))
		log.Printf("GeoReporterHub: client disconnected. Total: %d", n)
	}
}

func (h *GeoReporterHub) readLoop(client *reporterClient) {
	defer h.unregister(client)
	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("GeoReporterHub: WebSocket error: %v", err)
			}
			return
		}
		h.handleReply(client, message)
	}
}

func (h *GeoReporterHub) handleReply(client *reporterClient, message []byte) {
	var reply deviceReply
	if err := json.Unmarshal(message, &reply); err != nil || reply.Latitude == nil || reply.Longitude == nil {
		log.Printf("GeoReporterHub: ignoring malformed reply: %s", strings.TrimSpace(string(message)))
		return
	}
	id := client.take(reply.CorrelationID)
	if id == "" {
		log.Println("GeoReporterHub: dropping reply with no outstanding request")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
	defer cancel()
	reading := domain.GeoReading{Latitude: *reply.Latitude, Longitude: *reply.Longitude}
	entry := log.WithField("correlation_id", id)
	if err := h.forwarder.Forward(ctx, id, reading); err != nil {
		entry.Printf("GeoReporterHub: error forwarding lat/lon: %v", err)
		return
	}
	entry.Debug("GeoReporterHub: forwarded lat/lon")
}
