package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextTicketID(t *testing.T) {
	t.Parallel()

	guild := NewGuild("guild-1")
	require.Equal(t, 1, guild.NextTicketID())

	// IDs always grow past the highest ever assigned, regardless of status.
	guild.Tickets["3"] = &Ticket{ID: 3, Status: TicketClosed}
	guild.Tickets["7"] = &Ticket{ID: 7, Status: TicketOpen}
	require.Equal(t, 8, guild.NextTicketID())
}

func TestOpenTicketFor(t *testing.T) {
	t.Parallel()

	guild := NewGuild("guild-1")
	guild.Tickets["1"] = &Ticket{ID: 1, UserID: "user-1", Status: TicketClosed}
	require.Nil(t, guild.OpenTicketFor("user-1"))

	guild.Tickets["2"] = &Ticket{ID: 2, UserID: "user-1", Status: TicketOpen}
	ticket := guild.OpenTicketFor("user-1")
	require.NotNil(t, ticket)
	require.Equal(t, 2, ticket.ID)

	require.Nil(t, guild.OpenTicketFor("user-2"))
}

func TestOpenTicketByChannel(t *testing.T) {
	t.Parallel()

	guild := NewGuild("guild-1")
	guild.Tickets["1"] = &Ticket{ID: 1, ChannelID: "chan-1", Status: TicketOpen}
	guild.Tickets["2"] = &Ticket{ID: 2, ChannelID: "chan-2", Status: TicketClosed}

	ticket := guild.OpenTicketByChannel("chan-1")
	require.NotNil(t, ticket)
	require.Equal(t, 1, ticket.ID)

	// A closed ticket's channel is no longer an active ticket.
	require.Nil(t, guild.OpenTicketByChannel("chan-2"))
}

func TestCategory(t *testing.T) {
	t.Parallel()

	guild := NewGuild("guild-1")
	require.NotNil(t, guild.Category("Support"))
	require.Nil(t, guild.Category("support"))
	require.Nil(t, guild.Category("Billing"))
}

func TestTicketChannelName(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{ID: 12, Username: "Fenris"}
	require.Equal(t, "ticket-12-fenris", ticket.ChannelName())
}
