package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFanoutDeliversInOrder(t *testing.T) {
	first := &fakeNotifier{}
	second := &fakeNotifier{}
	fanout := Fanout{first, second}

	fanout.Broadcast(EventPaperApproved, map[string]string{"title": "t"})
	userID := uuid.New()
	fanout.ToUser(userID, EventTicketUpdate, nil)

	for _, n := range []*fakeNotifier{first, second} {
		assert.Equal(t, []string{EventPaperApproved, EventTicketUpdate}, n.eventNames())
		assert.Equal(t, userID, n.events[1].UserID)
	}
}

func TestNopNotifierIsSafe(t *testing.T) {
	var n Notifier = NopNotifier{}
	n.Broadcast(EventNewPaperPending, nil)
	n.ToUser(uuid.New(), EventTicketUpdate, nil)
}
