package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campus360/internal/dto"
)

func TestFromMessage(t *testing.T) {
	msg := dto.NotificationMessage{
		Type:      TypeEvent,
		Title:     "Reminder",
		Body:      "Tech Fest starts soon",
		Data:      map[string]string{"eventId": "ev-1"},
		CreatedAt: time.Now(),
	}
	p := FromMessage(msg)
	assert.Equal(t, "Reminder", p.Notification.Title)
	assert.Equal(t, "Tech Fest starts soon", p.Notification.Body)
	assert.Equal(t, TypeEvent, p.Data["type"])
	assert.Equal(t, "ev-1", p.Data["eventId"])
}

func TestScreenPath(t *testing.T) {
	cases := []struct {
		name string
		data map[string]string
		want string
	}{
		{"emergency", map[string]string{"type": TypeEmergency}, "/sos"},
		{"event with id", map[string]string{"type": TypeEvent, "eventId": "ev-1"}, "/events/ev-1"},
		{"event without id", map[string]string{"type": TypeEvent}, "/events"},
		{"canteen order", map[string]string{"type": TypeCanteen, "orderId": "o-1"}, "/canteen/orders/o-1"},
		{"canteen without order", map[string]string{"type": TypeCanteen}, "/canteen"},
		{"transport", map[string]string{"type": TypeTransport}, "/transport"},
		{"general with post", map[string]string{"type": TypeGeneral, "postId": "p-1"}, "/community-chat/p-1"},
		{"general without post", map[string]string{"type": TypeGeneral}, "/"},
		{"unknown", map[string]string{"type": "mystery"}, "/"},
		{"empty", map[string]string{}, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScreenPath(tc.data))
		})
	}
}
