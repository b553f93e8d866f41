package main

import (
	"github.com/bwmarrin/discordgo"
)

// ErrUserErrorProcessing is the generic rejection sent to a user when an
// interaction could not be processed.
const ErrUserErrorProcessing = "Something went wrong processing your request. Please try again."

func respondError(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeral(a, i, ErrUserErrorProcessing)
}

func respondEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// deferEphemeral acknowledges the interaction without a visible response, so
// slow work can finish past the interaction deadline.
func deferEphemeral(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func followupEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	_, err := a.Session().FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

// isAdmin reports whether the interaction member has the administrator
// permission in the guild.
func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil &&
		i.Member.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}
