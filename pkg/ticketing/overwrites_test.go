package ticketing

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestTicketOverwrites(t *testing.T) {
	t.Parallel()

	overwrites := ticketOverwrites("guild-1", "user-1", "bot-user",
		[]string{"R1", "R2"}, []string{"A1"})
	require.Len(t, overwrites, 6)

	// @everyone (the guild ID) is denied everything.
	require.Equal(t, "guild-1", overwrites[0].ID)
	require.Equal(t, discordgo.PermissionOverwriteTypeRole, overwrites[0].Type)
	require.Equal(t, int64(discordgo.PermissionAll), overwrites[0].Deny)

	// The creator and the bot are members, not roles.
	require.Equal(t, discordgo.PermissionOverwriteTypeMember, overwrites[1].Type)
	require.Equal(t, int64(permissionReadWrite), overwrites[1].Allow)
	require.Equal(t, discordgo.PermissionOverwriteTypeMember, overwrites[2].Type)
	require.Equal(t, int64(permissionReadWrite|discordgo.PermissionManageChannels), overwrites[2].Allow)
}

func TestTicketOverwritesDeduplicatesPrincipals(t *testing.T) {
	t.Parallel()

	// R1 is both a category role and an admin role; it must appear exactly
	// once, with the later (admin) grant.
	overwrites := ticketOverwrites("guild-1", "user-1", "bot-user",
		[]string{"R1", "R2"}, []string{"R1"})
	require.Len(t, overwrites, 5)

	seen := make(map[string]int)
	for _, o := range overwrites {
		seen[o.ID]++
	}
	require.Equal(t, 1, seen["R1"])
	require.Equal(t, 1, seen["R2"])
}

func TestTicketOverwritesNoRoles(t *testing.T) {
	t.Parallel()

	overwrites := ticketOverwrites("guild-1", "user-1", "bot-user", nil, nil)
	require.Len(t, overwrites, 3)
}
