package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/pkg/dataaccess"
	"github.com/fenris-bot/fenris/pkg/entities"
)

const (
	// CreateTicketButtonPrefix prefixes the activation ID of every category
	// button on the panel; the category name follows the colon.
	CreateTicketButtonPrefix = "create_ticket:"

	// CloseTicketButtonID is the activation ID of the close button pinned in
	// every ticket channel.
	CloseTicketButtonID = "close_ticket"

	// maxButtonsPerRow is the platform's limit for buttons in one action row.
	maxButtonsPerRow = 5
)

// Action is a recognized panel activation.
type Action int

const (
	// ActionNone is an unrecognized activation; it is ignored.
	ActionNone Action = iota

	// ActionCreate opens a ticket for the category encoded in the ID.
	ActionCreate

	// ActionClose closes the ticket in the activating channel.
	ActionClose
)

// ParseActivation parses a component activation ID into an action and, for
// creations, the category name. Unrecognized IDs map to ActionNone.
func ParseActivation(customID string) (Action, string) {
	if category, ok := strings.CutPrefix(customID, CreateTicketButtonPrefix); ok {
		return ActionCreate, category
	}
	if customID == CloseTicketButtonID {
		return ActionClose, ""
	}
	return ActionNone, ""
}

// Panel renders the category-button panel and records its canonical location.
type Panel struct {
	// l is the logger.
	l *slog.Logger

	// dal is the per-guild configuration store.
	dal dataaccess.GuildDal

	// platform is the chat-platform capability.
	platform Platform
}

// NewPanel creates a new panel controller.
func NewPanel(l *slog.Logger, dal dataaccess.GuildDal, platform Platform) *Panel {
	return &Panel{
		l:        l,
		dal:      dal,
		platform: platform,
	}
}

// Render posts the panel message with one button per configured category to
// the given channel and records that channel as the canonical panel location.
func (p *Panel) Render(ctx context.Context, guildID, channelID string) (*discordgo.Message, error) {
	guild, err := p.dal.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild configuration: %w", err)
	}

	msg, err := p.platform.SendMessage(channelID, PanelMessage(guild.TicketCategories))
	if err != nil {
		return nil, platformErr("send panel message", err)
	}

	if err := p.dal.SetTicketChannel(ctx, guildID, channelID, msg.ID); err != nil {
		return nil, fmt.Errorf("error saving panel location: %w", err)
	}
	return msg, nil
}

// PanelMessage builds the panel message: an explanatory embed plus one button
// per category, the category name encoded in the button's activation ID.
func PanelMessage(categories []entities.TicketCategory) *discordgo.MessageSend {
	buttons := make([]discordgo.MessageComponent, 0, len(categories))
	for _, category := range categories {
		buttons = append(buttons, discordgo.Button{
			Label:    category.Name,
			Style:    discordgo.PrimaryButton,
			CustomID: CreateTicketButtonPrefix + category.Name,
		})
	}

	// Discord allows at most five buttons per row.
	rows := make([]discordgo.MessageComponent, 0, (len(buttons)+maxButtonsPerRow-1)/maxButtonsPerRow)
	for len(buttons) > 0 {
		n := maxButtonsPerRow
		if len(buttons) < n {
			n = len(buttons)
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons[:n]})
		buttons = buttons[n:]
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Support Ticket System",
				Description: "Click one of the buttons below to open a support ticket",
				Color:       0x3498db,
			},
		},
		Components: rows,
	}
}
