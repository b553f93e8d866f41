package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fenris-bot/fenris/pkg/custom"
	"github.com/fenris-bot/fenris/pkg/dataaccess/monitoring"
	"github.com/fenris-bot/fenris/pkg/entities"
	"github.com/fenris-bot/fenris/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const guildDalName = "guild_dal"

// ErrTicketNotFound is returned when a ticket lookup misses.
var ErrTicketNotFound = errors.New("ticket not found")

// GuildDal is the durable per-guild configuration and ticket registry. Every
// mutating call persists the full guild document before returning; readers
// always observe the latest committed state.
type GuildDal interface {
	// GetGuildByID gets the configuration for a guild, creating and
	// persisting the default configuration on first access.
	GetGuildByID(ctx context.Context, guildID string) (*entities.Guild, error)

	// AddTicket allocates the next sequential ticket ID, inserts the ticket
	// as open and persists. The allocated ID is returned.
	AddTicket(ctx context.Context, guildID string, ticket *entities.Ticket) (int, error)

	// UpdateTicketStatus updates the status of a ticket in place and
	// persists. Returns ErrTicketNotFound if the ticket does not exist.
	UpdateTicketStatus(ctx context.Context, guildID string, ticketID int, status entities.TicketStatus, closedAt custom.Datetime, closedBy string) error

	// UpdateCategories replaces the guild's ticket categories.
	UpdateCategories(ctx context.Context, guildID string, categories []entities.TicketCategory) error

	// UpdateAdminRoles replaces the guild's admin roles.
	UpdateAdminRoles(ctx context.Context, guildID string, roleIDs []string) error

	// SetLogChannel sets the guild's ticket log channel.
	SetLogChannel(ctx context.Context, guildID string, channelID string) error

	// SetTicketChannel records the channel hosting the ticket panel and the
	// panel message within it.
	SetTicketChannel(ctx context.Context, guildID string, channelID string, panelMessageID string) error

	// SetTicketsCategory records the "Tickets" grouping category that ticket
	// channels are created under.
	SetTicketsCategory(ctx context.Context, guildID string, categoryID string) error
}

type guildDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client

	// locks serialize read-modify-persist cycles per guild.
	locks *GuildLocks
}

// NewGuildDal creates a new guild data access layer.
func NewGuildDal(logger *slog.Logger) GuildDal {
	l := logger.With(slog.String(logging.KeyDal, guildDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &guildDal{
		l:      l,
		client: MongoDB,
		locks:  NewGuildLocks(),
	}
}

// observe instruments a query the same way for every call site.
func observe(query string) *prometheus.Timer {
	monitoring.MongoTotalRequests.WithLabelValues(guildDalName, query, mongoDatabase, "guilds").Inc()
	return prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(guildDalName, query, mongoDatabase, "guilds"))
}

func (d *guildDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection("guilds")
}

// getGuild reads the guild document without taking the guild lock. Callers
// performing a read-modify-persist must hold the lock themselves.
func (d *guildDal) getGuild(ctx context.Context, guildID string) (*entities.Guild, error) {
	t := observe("get_guild_by_id")
	defer t.ObserveDuration()

	guild := new(entities.Guild)
	err := d.collection().FindOne(ctx, bson.M{"id": guildID}).Decode(guild)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		// First access for this guild. Seed the default configuration and
		// persist it immediately.
		guild = entities.NewGuild(guildID)
		if err := d.saveGuild(ctx, guild); err != nil {
			return nil, fmt.Errorf("error saving default guild configuration: %w", err)
		}
		return guild, nil
	case err != nil:
		return nil, fmt.Errorf("error getting guild: %w", err)
	}

	if guild.Tickets == nil {
		guild.Tickets = make(map[string]*entities.Ticket)
	}
	return guild, nil
}

// saveGuild persists the full guild document.
func (d *guildDal) saveGuild(ctx context.Context, guild *entities.Guild) error {
	t := observe("save_guild")
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	_, err := d.collection().UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

func (d *guildDal) GetGuildByID(ctx context.Context, guildID string) (*entities.Guild, error) {
	lock := d.locks.Get(guildID)
	lock.Lock()
	defer lock.Unlock()

	return d.getGuild(ctx, guildID)
}

// mutateGuild runs a read-modify-persist cycle for a guild under its lock.
func (d *guildDal) mutateGuild(ctx context.Context, guildID string, mutate func(g *entities.Guild) error) error {
	lock := d.locks.Get(guildID)
	lock.Lock()
	defer lock.Unlock()

	guild, err := d.getGuild(ctx, guildID)
	if err != nil {
		return err
	}

	if err := mutate(guild); err != nil {
		return err
	}

	return d.saveGuild(ctx, guild)
}

func (d *guildDal) AddTicket(ctx context.Context, guildID string, ticket *entities.Ticket) (int, error) {
	id := 0
	err := d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		id = g.NextTicketID()
		ticket.ID = id
		ticket.Status = entities.TicketOpen
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = custom.Now()
		}
		g.Tickets[ticket.Key()] = ticket
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error adding ticket: %w", err)
	}
	return id, nil
}

func (d *guildDal) UpdateTicketStatus(ctx context.Context, guildID string, ticketID int, status entities.TicketStatus, closedAt custom.Datetime, closedBy string) error {
	return d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		ticket, ok := g.Tickets[fmt.Sprintf("%d", ticketID)]
		if !ok {
			return ErrTicketNotFound
		}

		ticket.Status = status
		if !closedAt.IsZero() {
			ticket.ClosedAt = closedAt
		}
		if closedBy != "" {
			ticket.ClosedBy = closedBy
		}
		return nil
	})
}

func (d *guildDal) UpdateCategories(ctx context.Context, guildID string, categories []entities.TicketCategory) error {
	return d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		g.TicketCategories = categories
		return nil
	})
}

func (d *guildDal) UpdateAdminRoles(ctx context.Context, guildID string, roleIDs []string) error {
	return d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		g.AdminRoleIDs = roleIDs
		return nil
	})
}

func (d *guildDal) SetLogChannel(ctx context.Context, guildID string, channelID string) error {
	return d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		g.TicketLogChannelID = channelID
		return nil
	})
}

func (d *guildDal) SetTicketChannel(ctx context.Context, guildID string, channelID string, panelMessageID string) error {
	return d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		g.TicketChannelID = channelID
		g.PanelMessageID = panelMessageID
		return nil
	})
}

func (d *guildDal) SetTicketsCategory(ctx context.Context, guildID string, categoryID string) error {
	return d.mutateGuild(ctx, guildID, func(g *entities.Guild) error {
		g.TicketsCategoryID = categoryID
		return nil
	})
}
