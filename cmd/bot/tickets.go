package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/cmd/bot/monitoring"
	"github.com/fenris-bot/fenris/pkg/dataaccess"
	"github.com/fenris-bot/fenris/pkg/logging"
	"github.com/fenris-bot/fenris/pkg/ticketing"
)

// componentHandler routes panel button activations to the ticket engine.
// Unrecognized activation IDs are ignored.
func componentHandler(a IApp, i *discordgo.InteractionCreate) error {
	action, category := ticketing.ParseActivation(i.MessageComponentData().CustomID)
	switch action {
	case ticketing.ActionCreate:
		return createTicketHandler(a, i, category)
	case ticketing.ActionClose:
		return closeTicketHandler(a, i)
	default:
		return nil
	}
}

// createTicketHandler opens a ticket for the activating user and acknowledges
// them privately with a reference to the new channel.
func createTicketHandler(a IApp, i *discordgo.InteractionCreate, category string) error {
	user := i.Member.User

	ticket, err := a.Engine().Create(context.Background(), i.GuildID, user.ID, user.Username, category)
	switch {
	case errors.Is(err, ticketing.ErrDuplicateOpenTicket):
		return respondEphemeral(a, i, "You already have an open ticket!")
	case errors.Is(err, ticketing.ErrUnknownCategory):
		return respondEphemeral(a, i, fmt.Sprintf("There is no %q ticket category on this server.", category))
	case err != nil:
		return fmt.Errorf("error creating ticket: %w", err)
	}

	monitoring.TotalTicketsCreated.Inc()

	// Respond to the interaction saying that the ticket has been created in
	// channel <channel>. This is an embedded ephemeral message with all the
	// information about the ticket.
	err = a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Ticket Created",
					Description: fmt.Sprintf("<@%s>, your ticket has been created.", user.ID),
					Color:       0x2ecc71,
					Fields: []*discordgo.MessageEmbedField{
						{
							Name:   "Ticket Name",
							Value:  ticket.ChannelName(),
							Inline: true,
						},
						{
							Name:   "Ticket Channel",
							Value:  fmt.Sprintf("<#%s>", ticket.ChannelID),
							Inline: true,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// closeTicketHandler closes the ticket living in the activating channel. The
// interaction is acknowledged with a deferred response first; archival and
// the deletion grace delay take longer than the interaction deadline.
func closeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error acknowledging interaction: %w", err)
	}

	err := a.Engine().Close(context.Background(), i.GuildID, i.ChannelID, i.Member.User.ID)
	switch {
	case errors.Is(err, dataaccess.ErrTicketNotFound):
		if err := followupEphemeral(a, i, "Could not find an open ticket for this channel."); err != nil {
			a.Log().Error("Error sending followup", slog.String(logging.KeyError, err.Error()))
		}
		return nil
	case err != nil:
		// The interaction has already been acknowledged; surface the error to
		// the closer directly instead of bubbling up to the generic responder.
		a.Log().Error("Error closing ticket", slog.String(logging.KeyError, err.Error()))
		if err := followupEphemeral(a, i, ErrUserErrorProcessing); err != nil {
			a.Log().Error("Error sending followup", slog.String(logging.KeyError, err.Error()))
		}
		return nil
	}

	monitoring.TotalTicketsClosed.Inc()
	return nil
}
