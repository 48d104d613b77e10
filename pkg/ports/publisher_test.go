package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViolationEvent_Key(t *testing.T) {
	tests := []struct {
		name  string
		event ViolationEvent
		want  string
	}{
		{name: "document", event: ViolationEvent{Collection: "orders", File: "orders.json", Index: 3}, want: "orders/orders.json#3"},
		{name: "first document", event: ViolationEvent{Collection: "users", File: "users.json"}, want: "users/users.json#0"},
		{name: "unreadable file", event: ViolationEvent{Collection: "orders", File: "orders.json", Index: 3, Unreadable: true}, want: "orders/orders.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Key())
		})
	}
}
