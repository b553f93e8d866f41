package entities

import (
	"fmt"
	"strings"

	"github.com/fenris-bot/fenris/pkg/custom"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	// TicketOpen is the status of a ticket that is being worked.
	TicketOpen TicketStatus = "open"

	// TicketClosed is the status of a ticket whose channel has been archived
	// and removed.
	TicketClosed TicketStatus = "closed"
)

// Ticket is a tracked support request with its own private channel.
type Ticket struct {
	// ID is the number of the ticket. IDs are assigned sequentially per guild
	// and are used together with the creators name for the channel name. For
	// example, ticket 1 created by "fenris" gets the channel "ticket-1-fenris".
	ID int `json:"id" bson:"id"`

	// UserID is the ID of the user that created the ticket.
	UserID string `json:"user_id" bson:"user_id"`

	// Username is the username of the user that created the ticket.
	Username string `json:"username" bson:"username"`

	// ChannelID is the ID of the private channel provisioned for the ticket.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// Category is the name of the ticket category at creation time. It is not
	// re-validated if the guild's categories change later.
	Category string `json:"category" bson:"category"`

	// Status is the lifecycle state of the ticket.
	Status TicketStatus `json:"status" bson:"status"`

	// SetupMessageID is the ID of the pinned introduction message.
	SetupMessageID string `json:"setup_message_id" bson:"setup_message_id"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by,omitempty" bson:"closed_by,omitempty"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the ticket was closed.
	ClosedAt custom.Datetime `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// ChannelName returns the deterministic channel name for the ticket.
func (t *Ticket) ChannelName() string {
	return fmt.Sprintf("ticket-%d-%s", t.ID, strings.ToLower(t.Username))
}

// Key returns the ticket's key in the guild's ticket mapping.
func (t *Ticket) Key() string {
	return fmt.Sprintf("%d", t.ID)
}
