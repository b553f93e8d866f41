package entities

// Guild is the per-guild configuration document. It is the single source of
// truth for the ticketing system; every mutation is persisted as a whole
// before the triggering operation reports success.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// TicketCategories are the categories a ticket can be opened for. Names
	// are unique within the guild.
	TicketCategories []TicketCategory `json:"ticket_categories" bson:"ticket_categories"`

	// AdminRoleIDs are the roles with access to every ticket in the guild.
	AdminRoleIDs []string `json:"admin_role_ids" bson:"admin_role_ids"`

	// TicketChannelID is the channel hosting the ticket panel.
	TicketChannelID string `json:"ticket_channel_id" bson:"ticket_channel_id"`

	// PanelMessageID is the ID of the panel message in the ticket channel.
	PanelMessageID string `json:"panel_message_id" bson:"panel_message_id"`

	// TicketLogChannelID is the channel that receives ticket audit entries.
	TicketLogChannelID string `json:"ticket_log_channel_id" bson:"ticket_log_channel_id"`

	// TicketsCategoryID is the ID of the "Tickets" grouping category that
	// ticket channels are created under.
	TicketsCategoryID string `json:"tickets_category_id" bson:"tickets_category_id"`

	// Tickets maps the ticket ID (as a string) to the ticket. Closed tickets
	// are kept for audit history and are never deleted.
	Tickets map[string]*Ticket `json:"tickets" bson:"tickets"`
}

// NewGuild returns the default configuration for a guild that has not been
// seen before. It seeds a single "Support" category with no roles.
func NewGuild(id string) *Guild {
	return &Guild{
		ID: id,
		TicketCategories: []TicketCategory{
			{
				Name:        "Support",
				Description: "Get help from the support team",
				Color:       0x3498db,
				RoleIDs:     []string{},
			},
		},
		AdminRoleIDs: []string{},
		Tickets:      make(map[string]*Ticket),
	}
}

// Category returns the ticket category with the given name, or nil if the
// guild has no such category.
func (g *Guild) Category(name string) *TicketCategory {
	for i := range g.TicketCategories {
		if g.TicketCategories[i].Name == name {
			return &g.TicketCategories[i]
		}
	}
	return nil
}

// OpenTicketFor returns the open ticket created by the given user, or nil if
// the user has none. At most one open ticket per user exists at any time.
func (g *Guild) OpenTicketFor(userID string) *Ticket {
	for _, t := range g.Tickets {
		if t.UserID == userID && t.Status == TicketOpen {
			return t
		}
	}
	return nil
}

// OpenTicketByChannel returns the open ticket living in the given channel, or
// nil if the channel is not an active ticket.
func (g *Guild) OpenTicketByChannel(channelID string) *Ticket {
	for _, t := range g.Tickets {
		if t.ChannelID == channelID && t.Status == TicketOpen {
			return t
		}
	}
	return nil
}

// NextTicketID returns the ID the next ticket will be assigned. IDs are
// strictly increasing and never reused, even if closed tickets are ever
// purged from the document.
func (g *Guild) NextTicketID() int {
	max := 0
	for _, t := range g.Tickets {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}
