package logging

const (
	// KeyError is the structured logging key for errors.
	KeyError = "err"

	// KeyAppName is the structured logging key for the application name.
	KeyAppName = "app"

	// KeyDal is the structured logging key for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the structured logging key for a guild ID.
	KeyGuild = "guild_id"

	// KeyTicket is the structured logging key for a ticket ID.
	KeyTicket = "ticket_id"

	// KeyChannel is the structured logging key for a channel ID.
	KeyChannel = "channel_id"
)
