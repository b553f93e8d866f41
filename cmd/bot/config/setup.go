package config

import (
	"log/slog"
	"os"

	"github.com/fenris-bot/fenris/pkg/dataaccess"
	"github.com/fenris-bot/fenris/pkg/dataaccess/connection"
	"github.com/fenris-bot/fenris/pkg/logging"
)

func Parse(l *slog.Logger) {
	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		ApplicationId = envAppId
	}

	if envMongoUri := os.Getenv(EnvMongoUri); envMongoUri != "" {
		l.Debug("Found MongoDB URI in environment", slog.String("key", EnvMongoUri))
		MongoUri = envMongoUri
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		MonitoringPort = envMonitoringPort
	} else {
		// Default to 8080 if not provided.
		MonitoringPort = "8080"
		l.Info("No monitoring port provided in environment, defaulting to 8080", slog.String("key", EnvMonitoringPort))
	}

	if envDir := os.Getenv(EnvTranscriptDir); envDir != "" {
		l.Debug("Found transcript directory in environment", slog.String("key", EnvTranscriptDir))
		TranscriptDir = envDir
	} else {
		TranscriptDir = "data/transcripts"
		l.Info("No transcript directory provided in environment, defaulting to data/transcripts", slog.String("key", EnvTranscriptDir))
	}

	if envToken := os.Getenv(EnvDashboardToken); envToken != "" {
		DashboardToken = envToken
	} else {
		l.Warn("No dashboard token provided in environment, dashboard API will be disabled", slog.String("key", EnvDashboardToken))
	}

	if BotToken != "" &&
		ApplicationId != "" &&
		MongoUri != "" {

		// All required environment variables have been provided.
		l.Debug("All required environment variables have been provided")
		connectMongo(l)
		return
	}

	l.Error("Not all required environment variables have been provided", slog.String(logging.KeyError, "Incomplete configuration"))
	os.Exit(1)
}

func connectMongo(l *slog.Logger) {
	mongoConn := new(connection.MongoDB)
	mongoConn.ConnectionString = MongoUri

	db, err := mongoConn.Connect()
	if err != nil {
		l.Error("Error connecting to mongo", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	} else if db == nil {
		l.Error("MongoDB came back nil", slog.String(logging.KeyError, "MongoDB came back nil"))
		os.Exit(1)
	}

	dataaccess.MongoDB = db
	l.Debug("Connected to MongoDB", slog.String("key", EnvMongoUri))
}
