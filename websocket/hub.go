package websocket

import (
	"log"
	"sync"

	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/gofiber/contrib/websocket"
)

// BookingEvent is what admin dashboards receive over the live feed.
type BookingEvent struct {
	Type    string          `json:"type"`
	Booking *models.Booking `json:"booking"`
}

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingFailed    = "booking.failed"
)

var clients = make(map[*websocket.Conn]bool)
var clientsMu sync.RWMutex
var Register = make(chan *websocket.Conn)
var Unregister = make(chan *websocket.Conn)
var Broadcast = make(chan *BookingEvent, 16)

func RunHub() {
	for {
		select {
		case conn := <-Register:
			clientsMu.Lock()
			clients[conn] = true
			clientsMu.Unlock()
			log.Printf("Admin feed client connected (%d total)", len(clients))
		case conn := <-Unregister:
			clientsMu.Lock()
			delete(clients, conn)
			clientsMu.Unlock()
		case event := <-Broadcast:
			var dead []*websocket.Conn

			clientsMu.RLock()
			for conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending booking event to admin client: %v", err)
					conn.Close()
					dead = append(dead, conn)
				}
			}
			clientsMu.RUnlock()

			if len(dead) > 0 {
				clientsMu.Lock()
				for _, conn := range dead {
					delete(clients, conn)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// Publish pushes a booking event onto the feed without blocking the caller;
// when nobody drains the hub the event is dropped.
func Publish(eventType string, booking *models.Booking) {
	select {
	case Broadcast <- &BookingEvent{Type: eventType, Booking: booking}:
	default:
	}
}
