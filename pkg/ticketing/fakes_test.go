package ticketing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/fenris-bot/fenris/pkg/custom"
	"github.com/fenris-bot/fenris/pkg/dataaccess"
	"github.com/fenris-bot/fenris/pkg/entities"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePlatform is an in-memory Platform recording every call, with injectable
// failures per operation.
type fakePlatform struct {
	mu sync.Mutex

	botID  string
	nextID int

	// channels holds every channel created or seeded, by ID.
	channels map[string]*discordgo.Channel

	// sent holds every message sent, by channel ID, in send order.
	sent map[string][]*discordgo.Message

	// history is what Messages returns, newest first.
	history map[string][]*discordgo.Message

	// pinned holds "channelID/messageID" pairs.
	pinned []string

	// deleted holds the IDs of deleted channels.
	deleted []string

	users map[string]*discordgo.User

	channelErr  error
	createErr   error
	deleteErr   error
	sendErr     error
	pinErr      error
	messagesErr error
	userErr     error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		botID:    "bot-user",
		channels: make(map[string]*discordgo.Channel),
		sent:     make(map[string][]*discordgo.Message),
		history:  make(map[string][]*discordgo.Message),
		users:    make(map[string]*discordgo.User),
	}
}

func (p *fakePlatform) BotUserID() string {
	return p.botID
}

func (p *fakePlatform) Channel(channelID string) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channelErr != nil {
		return nil, p.channelErr
	}
	channel, ok := p.channels[channelID]
	if !ok {
		return nil, &discordgo.RESTError{
			Message: &discordgo.APIErrorMessage{
				Code:    discordgo.ErrCodeUnknownChannel,
				Message: "Unknown Channel",
			},
		}
	}
	return channel, nil
}

func (p *fakePlatform) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return nil, p.createErr
	}

	p.nextID++
	channel := &discordgo.Channel{
		ID:                   fmt.Sprintf("chan-%d", p.nextID),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	p.channels[channel.ID] = channel
	return channel, nil
}

func (p *fakePlatform) DeleteChannel(channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleteErr != nil {
		return p.deleteErr
	}
	delete(p.channels, channelID)
	p.deleted = append(p.deleted, channelID)
	return nil
}

func (p *fakePlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendErr != nil {
		return nil, p.sendErr
	}

	p.nextID++
	sent := &discordgo.Message{
		ID:         fmt.Sprintf("msg-%d", p.nextID),
		ChannelID:  channelID,
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
	}
	p.sent[channelID] = append(p.sent[channelID], sent)
	return sent, nil
}

func (p *fakePlatform) PinMessage(channelID string, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pinErr != nil {
		return p.pinErr
	}
	p.pinned = append(p.pinned, channelID+"/"+messageID)
	return nil
}

func (p *fakePlatform) Messages(channelID string, limit int) ([]*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.messagesErr != nil {
		return nil, p.messagesErr
	}
	messages := p.history[channelID]
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (p *fakePlatform) User(userID string) (*discordgo.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userErr != nil {
		return nil, p.userErr
	}
	user, ok := p.users[userID]
	if !ok {
		return nil, fmt.Errorf("no such user %q", userID)
	}
	return user, nil
}

func (p *fakePlatform) channelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.channels)
}

func (p *fakePlatform) sentTo(channelID string) []*discordgo.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[channelID]
}

// memDal is an in-memory GuildDal mirroring the persistence semantics of the
// real store: reads return copies, mutations persist whole documents.
type memDal struct {
	mu     sync.Mutex
	guilds map[string]*entities.Guild

	addErr          error
	updateStatusErr error
}

func newMemDal(guilds ...*entities.Guild) *memDal {
	d := &memDal{guilds: make(map[string]*entities.Guild)}
	for _, g := range guilds {
		d.guilds[g.ID] = g
	}
	return d
}

func (d *memDal) getOrSeed(guildID string) *entities.Guild {
	guild, ok := d.guilds[guildID]
	if !ok {
		guild = entities.NewGuild(guildID)
		d.guilds[guildID] = guild
	}
	return guild
}

func copyGuild(g *entities.Guild) *entities.Guild {
	out := *g
	out.Tickets = make(map[string]*entities.Ticket, len(g.Tickets))
	for k, t := range g.Tickets {
		ticket := *t
		out.Tickets[k] = &ticket
	}
	return &out
}

func (d *memDal) GetGuildByID(_ context.Context, guildID string) (*entities.Guild, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyGuild(d.getOrSeed(guildID)), nil
}

func (d *memDal) AddTicket(_ context.Context, guildID string, ticket *entities.Ticket) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.addErr != nil {
		return 0, d.addErr
	}

	guild := d.getOrSeed(guildID)
	ticket.ID = guild.NextTicketID()
	ticket.Status = entities.TicketOpen
	stored := *ticket
	guild.Tickets[ticket.Key()] = &stored
	return ticket.ID, nil
}

func (d *memDal) UpdateTicketStatus(_ context.Context, guildID string, ticketID int, status entities.TicketStatus, closedAt custom.Datetime, closedBy string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.updateStatusErr != nil {
		return d.updateStatusErr
	}

	guild := d.getOrSeed(guildID)
	ticket, ok := guild.Tickets[fmt.Sprintf("%d", ticketID)]
	if !ok {
		return dataaccess.ErrTicketNotFound
	}
	ticket.Status = status
	ticket.ClosedAt = closedAt
	ticket.ClosedBy = closedBy
	return nil
}

func (d *memDal) UpdateCategories(_ context.Context, guildID string, categories []entities.TicketCategory) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getOrSeed(guildID).TicketCategories = categories
	return nil
}

func (d *memDal) UpdateAdminRoles(_ context.Context, guildID string, roleIDs []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getOrSeed(guildID).AdminRoleIDs = roleIDs
	return nil
}

func (d *memDal) SetLogChannel(_ context.Context, guildID string, channelID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getOrSeed(guildID).TicketLogChannelID = channelID
	return nil
}

func (d *memDal) SetTicketChannel(_ context.Context, guildID string, channelID string, panelMessageID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	guild := d.getOrSeed(guildID)
	guild.TicketChannelID = channelID
	guild.PanelMessageID = panelMessageID
	return nil
}

func (d *memDal) SetTicketsCategory(_ context.Context, guildID string, categoryID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getOrSeed(guildID).TicketsCategoryID = categoryID
	return nil
}

// stored returns the persisted guild document, not a copy. Tests only.
func (d *memDal) stored(guildID string) *entities.Guild {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.guilds[guildID]
}
