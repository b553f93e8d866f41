package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/pkg/custom"
	"github.com/fenris-bot/fenris/pkg/dataaccess"
	"github.com/fenris-bot/fenris/pkg/entities"
	"github.com/fenris-bot/fenris/pkg/logging"
)

// defaultGraceDelay is how long a closed ticket channel survives after the
// closure notice, so the notice lands before the channel disappears.
const defaultGraceDelay = 5 * time.Second

// Engine drives the ticket lifecycle: creation, uniqueness enforcement,
// permission provisioning, closure and transcript archival.
type Engine struct {
	// l is the logger.
	l *slog.Logger

	// dal is the per-guild configuration store.
	dal dataaccess.GuildDal

	// platform is the chat-platform capability.
	platform Platform

	// archiver archives ticket transcripts on closure.
	archiver *Archiver

	// locks serialize ticket creation and closure per guild. The duplicate
	// check, the channel creation and the persisted record must not
	// interleave with another create for the same guild.
	locks *dataaccess.GuildLocks

	// GraceDelay is the delay between the closure notice and the channel
	// deletion.
	GraceDelay time.Duration
}

// NewEngine creates a new ticket engine.
func NewEngine(l *slog.Logger, dal dataaccess.GuildDal, platform Platform, archiver *Archiver) *Engine {
	return &Engine{
		l:          l,
		dal:        dal,
		platform:   platform,
		archiver:   archiver,
		locks:      dataaccess.NewGuildLocks(),
		GraceDelay: defaultGraceDelay,
	}
}

// Create opens a ticket for the user in the given category. It provisions the
// private channel, pins the introduction message and persists the ticket
// record. The caller is responsible for acknowledging the requester.
func (e *Engine) Create(ctx context.Context, guildID, userID, username, category string) (*entities.Ticket, error) {
	lock := e.locks.Get(guildID)
	lock.Lock()
	defer lock.Unlock()

	guild, err := e.dal.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild configuration: %w", err)
	}

	cat := guild.Category(category)
	if cat == nil {
		return nil, ErrUnknownCategory
	}

	// At most one open ticket per user. Checked before any side effects.
	if existing := guild.OpenTicketFor(userID); existing != nil {
		return nil, ErrDuplicateOpenTicket
	}

	// Ensure the grouping category for ticket channels exists.
	parentID, err := e.ensureTicketsCategory(ctx, guild)
	if err != nil {
		return nil, err
	}

	ticket := &entities.Ticket{
		ID:        guild.NextTicketID(),
		UserID:    userID,
		Username:  username,
		Category:  category,
		Status:    entities.TicketOpen,
		CreatedAt: custom.Now(),
	}

	// Create the ticket channel only the granted roles and the creator can
	// see. Admin roles are applied after the category roles so they win for
	// shared principals.
	channel, err := e.platform.CreateChannel(guildID, discordgo.GuildChannelCreateData{
		Name:     ticket.ChannelName(),
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    fmt.Sprintf("Ticket for %s - %s", username, category),
		ParentID: parentID,
		PermissionOverwrites: ticketOverwrites(
			guildID, userID, e.platform.BotUserID(), cat.RoleIDs, guild.AdminRoleIDs,
		),
	})
	if err != nil {
		return nil, platformErr("create channel", err)
	}
	ticket.ChannelID = channel.ID

	msg, err := e.platform.SendMessage(channel.ID, newTicketMessage(ticket, cat))
	if err != nil {
		return nil, platformErr("send message", err)
	}
	ticket.SetupMessageID = msg.ID

	if err := e.platform.PinMessage(channel.ID, msg.ID); err != nil {
		return nil, platformErr("pin message", err)
	}

	if _, err := e.dal.AddTicket(ctx, guildID, ticket); err != nil {
		// The channel exists but the record does not. There is no automatic
		// rollback; operators have to reconcile the orphaned channel.
		e.l.Error("Ticket channel created but record not persisted",
			slog.String(logging.KeyGuild, guildID),
			slog.String(logging.KeyChannel, channel.ID),
			slog.String(logging.KeyError, err.Error()))
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	// Audit the creation. Failing to reach the log channel never rolls back
	// the ticket.
	e.logCreated(guild, ticket)

	return ticket, nil
}

// Close closes the ticket living in the given channel, archives its
// transcript and deletes the channel after the grace delay. Once the closure
// has begun, deletion happens regardless of later events in the channel.
func (e *Engine) Close(ctx context.Context, guildID, channelID, closerID string) error {
	ticket, guild, err := e.closeRecord(ctx, guildID, channelID, closerID)
	if err != nil {
		return err
	}

	// Archive before the channel disappears. Archive failures are logged,
	// not surfaced; the status transition has already been committed.
	if _, err := e.archiver.Archive(ctx, ticket, guild); err != nil {
		e.l.Error("Error archiving ticket transcript",
			slog.String(logging.KeyGuild, guildID),
			slog.Int(logging.KeyTicket, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}

	notice := fmt.Sprintf("This ticket has been closed and the channel will be deleted in %d seconds.",
		int(e.GraceDelay.Seconds()))
	if _, err := e.platform.SendMessage(channelID, &discordgo.MessageSend{Content: notice}); err != nil {
		e.l.Error("Error sending closure notice",
			slog.String(logging.KeyChannel, channelID),
			slog.String(logging.KeyError, err.Error()))
	}

	// Let the notice land before the channel goes away.
	time.Sleep(e.GraceDelay)

	if err := e.platform.DeleteChannel(channelID); err != nil {
		return platformErr("delete channel", err)
	}
	return nil
}

// closeRecord transitions the ticket record to closed under the guild lock
// and returns the updated ticket along with the guild configuration.
func (e *Engine) closeRecord(ctx context.Context, guildID, channelID, closerID string) (*entities.Ticket, *entities.Guild, error) {
	lock := e.locks.Get(guildID)
	lock.Lock()
	defer lock.Unlock()

	guild, err := e.dal.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting guild configuration: %w", err)
	}

	ticket := guild.OpenTicketByChannel(channelID)
	if ticket == nil {
		return nil, nil, dataaccess.ErrTicketNotFound
	}

	closedAt := custom.Now()
	if err := e.dal.UpdateTicketStatus(ctx, guildID, ticket.ID, entities.TicketClosed, closedAt, closerID); err != nil {
		return nil, nil, fmt.Errorf("error updating ticket status: %w", err)
	}

	ticket.Status = entities.TicketClosed
	ticket.ClosedAt = closedAt
	ticket.ClosedBy = closerID
	return ticket, guild, nil
}

// ensureTicketsCategory resolves the "Tickets" grouping category, creating it
// if it has never existed or has been deleted out from under the bot.
func (e *Engine) ensureTicketsCategory(ctx context.Context, guild *entities.Guild) (string, error) {
	if guild.TicketsCategoryID != "" {
		channel, err := e.platform.Channel(guild.TicketsCategoryID)
		if err == nil {
			return channel.ID, nil
		}

		restErr := new(discordgo.RESTError)
		if !errors.As(err, &restErr) || restErr.Message == nil || restErr.Message.Code != discordgo.ErrCodeUnknownChannel {
			return "", platformErr("get category", err)
		}
		e.l.Warn("Tickets category does not exist, creating it now",
			slog.String(logging.KeyGuild, guild.ID))
	}

	channel, err := e.platform.CreateChannel(guild.ID, discordgo.GuildChannelCreateData{
		Name: "Tickets",
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		return "", platformErr("create category", err)
	}

	if err := e.dal.SetTicketsCategory(ctx, guild.ID, channel.ID); err != nil {
		return "", fmt.Errorf("error saving tickets category: %w", err)
	}
	guild.TicketsCategoryID = channel.ID
	return channel.ID, nil
}

// logCreated emits a creation audit entry to the guild's log channel, if one
// is configured.
func (e *Engine) logCreated(guild *entities.Guild, ticket *entities.Ticket) {
	if guild.TicketLogChannelID == "" {
		return
	}

	_, err := e.platform.SendMessage(guild.TicketLogChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Ticket created",
				Description: fmt.Sprintf("Ticket #%d was created by <@%s>", ticket.ID, ticket.UserID),
				Color:       0x2ecc71,
				Timestamp:   ticket.CreatedAt.Time().Format(time.RFC3339),
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Category", Value: ticket.Category, Inline: true},
					{Name: "Channel", Value: fmt.Sprintf("<#%s>", ticket.ChannelID), Inline: true},
				},
			},
		},
	})
	if err != nil {
		e.l.Error("Error sending creation audit entry",
			slog.String(logging.KeyGuild, guild.ID),
			slog.Int(logging.KeyTicket, ticket.ID),
			slog.String(logging.KeyError, err.Error()))
	}
}

// newTicketMessage builds the pinned introduction message for a new ticket
// channel, including the close affordance.
func newTicketMessage(ticket *entities.Ticket, category *entities.TicketCategory) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: fmt.Sprintf("Ticket: %s", category.Name),
				Description: fmt.Sprintf(
					"Thanks for opening a ticket, <@%s>. The support team will be with you shortly.",
					ticket.UserID),
				Color:     category.Color,
				Timestamp: ticket.CreatedAt.Time().Format(time.RFC3339),
				Footer: &discordgo.MessageEmbedFooter{
					Text: fmt.Sprintf("Ticket ID: %d", ticket.ID),
				},
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Close Ticket",
						Style:    discordgo.DangerButton,
						CustomID: CloseTicketButtonID,
					},
				},
			},
		},
	}
}
