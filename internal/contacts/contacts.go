// Package contacts resolves the aggregate's vendor list into contacts
// and defines the sink that delivers messages to them. The delivery
// mechanism itself (browser automation over a chat UI) lives outside
// this module; only its contract is modeled here.
package contacts

import (
	"context"
	"strings"

	"plansheet/internal/event"
)

// Contact is one reachable person resolved from the event data.
type Contact struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Phone  string `json:"phone"`
}

// DispatchResult reports delivery for one contact.
type DispatchResult struct {
	Contact Contact `json:"contact"`
	Sent    bool    `json:"sent"`
	Error   string  `json:"error,omitempty"`
}

// Dispatcher delivers a message to each contact and reports per-item
// success or failure. Implementations live outside this module.
type Dispatcher interface {
	Dispatch(ctx context.Context, list []Contact, message string) ([]DispatchResult, error)
}

// Resolve builds the contact list from an aggregate: vendors that carry
// a phone number or contact handle, in vendor order.
func Resolve(agg *event.EventAggregate) []Contact {
	var list []Contact
	for _, v := range agg.Vendors {
		phone := strings.TrimSpace(v.Phone)
		handle := strings.TrimSpace(v.Contact)
		if phone == "" && handle == "" {
			continue
		}
		list = append(list, Contact{Name: v.Name, Handle: handle, Phone: phone})
	}
	return list
}
