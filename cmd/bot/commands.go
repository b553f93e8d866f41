package main

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	// SetupCmdName is the command that posts the ticket panel.
	SetupCmdName = "setup"

	// SetLogChannelCmdName is the command that sets the ticket log channel.
	SetLogChannelCmdName = "set_log_channel"

	// AddAdminRoleCmdName is the command that adds a ticket admin role.
	AddAdminRoleCmdName = "add_admin_role"

	// channelOptName is the name of the channel option.
	channelOptName = "channel"

	// roleOptName is the name of the role option.
	roleOptName = "role"
)

var (
	// setupCmd posts the ticket panel into the channel it is invoked in.
	setupCmd = &discordgo.ApplicationCommand{
		Name:        SetupCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Sets up the ticket system by posting the ticket panel in this channel.",
	}

	// setLogChannelCmd sets the channel that receives ticket audit entries.
	setLogChannelCmd = &discordgo.ApplicationCommand{
		Name:        SetLogChannelCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Sets the channel for ticket logs.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        channelOptName,
				Type:        discordgo.ApplicationCommandOptionChannel,
				Description: "The channel that ticket logs will be sent to.",
				Required:    true,
			},
		},
	}

	// addAdminRoleCmd adds a role that can manage every ticket.
	addAdminRoleCmd = &discordgo.ApplicationCommand{
		Name:        AddAdminRoleCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "Adds a role that can manage all tickets.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        roleOptName,
				Type:        discordgo.ApplicationCommandOptionRole,
				Description: "The role that will be able to manage all tickets.",
				Required:    true,
			},
		},
	}

	// slashCommands are the commands registered for every guild.
	slashCommands = []*discordgo.ApplicationCommand{
		setupCmd,
		setLogChannelCmd,
		addAdminRoleCmd,
	}
)

// setupCmdProcessor posts the ticket panel to the invoking channel and
// records it as the canonical panel location.
func setupCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !isAdmin(i) {
		return respondEphemeral(a, i, "You must be an administrator to use this command")
	}

	if _, err := a.Panel().Render(context.Background(), i.GuildID, i.ChannelID); err != nil {
		return fmt.Errorf("error rendering ticket panel: %w", err)
	}

	return respondEphemeral(a, i, "Ticket panel created!")
}

// setLogChannelCmdProcessor sets the guild's ticket log channel.
func setLogChannelCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !isAdmin(i) {
		return respondEphemeral(a, i, "You must be an administrator to use this command")
	}

	channel := i.ApplicationCommandData().Options[0].ChannelValue(a.Session())
	if channel.Type != discordgo.ChannelTypeGuildText {
		return respondEphemeral(a, i, "You must provide a text channel for ticket logs.")
	}

	if err := a.GuildDal().SetLogChannel(context.Background(), i.GuildID, channel.ID); err != nil {
		return fmt.Errorf("error saving log channel: %w", err)
	}

	return respondEphemeral(a, i, fmt.Sprintf("Ticket logs will be sent to <#%s>", channel.ID))
}

// addAdminRoleCmdProcessor adds a role to the guild's ticket admin roles.
func addAdminRoleCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !isAdmin(i) {
		return respondEphemeral(a, i, "You must be an administrator to use this command")
	}

	role := i.ApplicationCommandData().Options[0].RoleValue(a.Session(), i.GuildID)

	guild, err := a.GuildDal().GetGuildByID(context.Background(), i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild configuration: %w", err)
	}

	for _, id := range guild.AdminRoleIDs {
		if id == role.ID {
			return respondEphemeral(a, i, fmt.Sprintf("<@&%s> is already an admin role", role.ID))
		}
	}

	roles := append(guild.AdminRoleIDs, role.ID)
	if err := a.GuildDal().UpdateAdminRoles(context.Background(), i.GuildID, roles); err != nil {
		return fmt.Errorf("error saving admin roles: %w", err)
	}

	return respondEphemeral(a, i, fmt.Sprintf("<@&%s> has been added as an admin role", role.ID))
}
