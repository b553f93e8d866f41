package ticketing

import (
	"github.com/bwmarrin/discordgo"
)

// permissionReadWrite is the grant given to everyone allowed into a ticket.
const permissionReadWrite = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// ticketOverwrites builds the permission overwrite set for a ticket channel:
// @everyone is denied, the creator and the bot get read/write (the bot also
// manages the channel), then the category roles and finally the admin roles
// get read/write. A later entry for the same principal replaces the earlier
// one, so the admin grant always wins for a role in both sets.
func ticketOverwrites(guildID, userID, botID string, categoryRoles, adminRoles []string) []*discordgo.PermissionOverwrite {
	overwrites := make([]*discordgo.PermissionOverwrite, 0, 3+len(categoryRoles)+len(adminRoles))
	index := make(map[string]int)

	put := func(o *discordgo.PermissionOverwrite) {
		if i, ok := index[o.ID]; ok {
			overwrites[i] = o
			return
		}
		index[o.ID] = len(overwrites)
		overwrites = append(overwrites, o)
	}

	// Deny @everyone from seeing the ticket. The everyone role shares the
	// guild's ID.
	put(&discordgo.PermissionOverwrite{
		ID:   guildID,
		Type: discordgo.PermissionOverwriteTypeRole,
		Deny: discordgo.PermissionAll,
	})

	// The creator of the ticket can see the ticket.
	put(&discordgo.PermissionOverwrite{
		ID:    userID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: permissionReadWrite,
		Deny:  discordgo.PermissionMentionEveryone,
	})

	// The bot needs to manage the channel to pin and eventually delete it.
	put(&discordgo.PermissionOverwrite{
		ID:    botID,
		Type:  discordgo.PermissionOverwriteTypeMember,
		Allow: permissionReadWrite | discordgo.PermissionManageChannels,
	})

	for _, roleID := range categoryRoles {
		put(&discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: permissionReadWrite,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	// Admin roles are applied last so their grant wins for a role that is
	// also listed on the category.
	for _, roleID := range adminRoles {
		put(&discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: permissionReadWrite,
			Deny:  discordgo.PermissionMentionEveryone,
		})
	}

	return overwrites
}
