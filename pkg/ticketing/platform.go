package ticketing

import (
	"github.com/bwmarrin/discordgo"
)

// Platform is the chat-platform capability the ticket engine consumes. It is
// the subset of the Discord session the engine needs, so tests can stand in a
// fake without a gateway connection.
type Platform interface {
	// BotUserID returns the ID of the bot's own user.
	BotUserID() string

	// Channel returns a channel by ID.
	Channel(channelID string) (*discordgo.Channel, error)

	// CreateChannel creates a guild channel with the given data.
	CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)

	// DeleteChannel deletes a channel irrevocably.
	DeleteChannel(channelID string) error

	// SendMessage sends a message to a channel.
	SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	// PinMessage pins a message in a channel.
	PinMessage(channelID string, messageID string) error

	// Messages returns up to limit of the most recent messages in a channel,
	// newest first.
	Messages(channelID string, limit int) ([]*discordgo.Message, error)

	// User resolves a user by ID.
	User(userID string) (*discordgo.User, error)
}

// sessionPlatform adapts a discordgo session to the Platform port.
type sessionPlatform struct {
	s *discordgo.Session
}

// NewSessionPlatform wraps a discord session as a Platform.
func NewSessionPlatform(s *discordgo.Session) Platform {
	return &sessionPlatform{s: s}
}

func (p *sessionPlatform) BotUserID() string {
	if p.s.State == nil || p.s.State.User == nil {
		return ""
	}
	return p.s.State.User.ID
}

func (p *sessionPlatform) Channel(channelID string) (*discordgo.Channel, error) {
	return p.s.Channel(channelID)
}

func (p *sessionPlatform) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return p.s.GuildChannelCreateComplex(guildID, data)
}

func (p *sessionPlatform) DeleteChannel(channelID string) error {
	_, err := p.s.ChannelDelete(channelID)
	return err
}

func (p *sessionPlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return p.s.ChannelMessageSendComplex(channelID, msg)
}

func (p *sessionPlatform) PinMessage(channelID string, messageID string) error {
	return p.s.ChannelMessagePin(channelID, messageID)
}

func (p *sessionPlatform) Messages(channelID string, limit int) ([]*discordgo.Message, error) {
	return p.s.ChannelMessages(channelID, limit, "", "", "")
}

func (p *sessionPlatform) User(userID string) (*discordgo.User, error) {
	return p.s.User(userID)
}
