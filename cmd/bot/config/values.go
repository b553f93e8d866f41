package config

const (
	// AppName is the name of the application.
	AppName = "fenris"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvTranscriptDir is the environment variable for the directory ticket
	// transcripts are archived to.
	EnvTranscriptDir = `TRANSCRIPT_DIR`

	// EnvDashboardToken is the environment variable for the bearer token the
	// dashboard uses against the config API.
	EnvDashboardToken = `DASHBOARD_TOKEN`
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// TranscriptDir is the directory ticket transcripts are archived to.
	TranscriptDir string

	// DashboardToken is the bearer token required on dashboard API calls.
	DashboardToken string
)
