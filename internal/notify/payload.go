// Package notify models the push payload consumed by clients and maps
// notification types to the screen path a notification click should open.
package notify

import (
	"campus360/internal/dto"
)

const (
	TypeEmergency = "emergency"
	TypeEvent     = "event"
	TypeCanteen   = "canteen"
	TypeTransport = "transport"
	TypeGeneral   = "general"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Payload is the wire shape of a push notification: a displayable part and a
// string-only data map used for click routing.
type Payload struct {
	Notification Notification      `json:"notification"`
	Data         map[string]string `json:"data"`
}

// FromMessage converts a queued notification message into the client payload.
func FromMessage(msg dto.NotificationMessage) Payload {
	data := map[string]string{"type": msg.Type}
	for k, v := range msg.Data {
		data[k] = v
	}
	return Payload{
		Notification: Notification{Title: msg.Title, Body: msg.Body},
		Data:         data,
	}
}

// ScreenPath resolves the route a client should open when a notification of
// the given data map is tapped. Unknown types land on the home screen.
func ScreenPath(data map[string]string) string {
	switch data["type"] {
	case TypeEmergency:
		return "/sos"
	case TypeEvent:
		if id := data["eventId"]; id != "" {
			return "/events/" + id
		}
		return "/events"
	case TypeCanteen:
		if id := data["orderId"]; id != "" {
			return "/canteen/orders/" + id
		}
		return "/canteen"
	case TypeTransport:
		return "/transport"
	case TypeGeneral:
		if id := data["postId"]; id != "" {
			return "/community-chat/" + id
		}
		return "/"
	default:
		return "/"
	}
}
