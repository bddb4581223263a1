package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/andreee-ff/saferide-go/internal/realtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST API already allows any origin; the ride code is the only
	// admission control, same as the original service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection pumping messages between the peer and
// the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades the request and registers the connection with the hub
func ServeWS(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("hub: upgrade failed: %v", err)
			return
		}

		client := &Client{hub: h, conn: conn, send: make(chan []byte, 64)}
		h.register <- client

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg []byte) {
	var env realtime.Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("hub: dropping malformed frame: %v", err)
		return
	}

	switch env.Event {
	case realtime.EventJoinRide:
		var payload realtime.JoinRidePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RideCode == "" {
			return
		}
		c.hub.subscribe <- subscription{client: c, rideCode: payload.RideCode}

	case realtime.EventUpdateLocation:
		var payload realtime.UpdateLocationPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RideCode == "" {
			return
		}
		if payload.LocationTimestamp.IsZero() {
			payload.LocationTimestamp = time.Now().UTC()
		}
		c.hub.BroadcastLocation(payload)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
