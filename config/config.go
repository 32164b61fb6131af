package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	TikTok TikTokConfig

	PostgresURL        string
	PostgresSecretPath string

	LogLevel        log.Level
	LogFormat       LogFormat
	TestModeEnabled bool
}

type TikTokConfig struct {
	ApiURL         url.URL
	RedirectURI    string
	Scopes         []string
	SecretPath     string
	SubmitInterval time.Duration
	PollInterval   time.Duration
	PollTimeout    time.Duration
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type EnvfileKey string

const (
	// Postgres connection string to use for database connections
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"

	// Base URL to the TikTok open API (e.g. "https://open.tiktokapis.com")
	EnvfileKeyTikTokAPI = "TIKTOK_API"
	// AWS Secrets Manager path where TikTok app secrets can be found
	EnvfileKeyTikTokSecretPath = "TIKTOK_SECRETS_PATH"
	// Redirect URI registered with the TikTok app, used during authorization
	EnvfileKeyTikTokRedirectURI = "TIKTOK_REDIRECT_URI"
	// Comma-separated scopes to request during authorization
	EnvfileKeyTikTokScopes = "TIKTOK_SCOPES"
	// Interval between scans for queued jobs, in seconds
	EnvfileKeyTikTokSubmitInterval = "TIKTOK_SUBMIT_INTERVAL"
	// Interval between publish status polls, in seconds
	EnvfileKeyTikTokPollInterval = "TIKTOK_POLL_INTERVAL"
	// Upper bound on how long one job is polled before giving up, in seconds
	EnvfileKeyTikTokPollTimeout = "TIKTOK_POLL_TIMEOUT"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
	// Enables "test mode" (server simulates publishing, etc.)
	EnvfileKeyTestMode = "TEST_MODE"
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	tiktokURL, err := url.Parse(getConfigString(EnvfileKeyTikTokAPI))
	if err != nil {
		log.Fatalf("error parsing TikTok URL: %v", err)
	}

	scopes := strings.Split(getConfigString(EnvfileKeyTikTokScopes), ",")
	if len(scopes) == 1 && scopes[0] == "" {
		scopes = []string{"user.info.basic", "video.publish"}
	}

	submitInterval := getConfigInt(EnvfileKeyTikTokSubmitInterval)
	if submitInterval == 0 {
		// Default to 5 if not set
		submitInterval = 5
	}

	pollInterval := getConfigInt(EnvfileKeyTikTokPollInterval)
	if pollInterval == 0 {
		pollInterval = 10
	}

	pollTimeout := getConfigInt(EnvfileKeyTikTokPollTimeout)
	if pollTimeout == 0 {
		// TikTok processes most videos well under ten minutes
		pollTimeout = 600
	}

	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	postgresURL := getConfigString(EnvfileKeyPostgresURL)
	postgresSecretsPath := getConfigString(EnvfileKeyPostgresSecretsPath)
	if postgresURL == "" && postgresSecretsPath == "" {
		log.Fatal("postgres not configured")
	}

	isTestMode := viper.GetBool(EnvfileKeyTestMode)

	return Config{
		TikTok: TikTokConfig{
			ApiURL:         *tiktokURL,
			RedirectURI:    getConfigString(EnvfileKeyTikTokRedirectURI),
			Scopes:         scopes,
			SecretPath:     getConfigString(EnvfileKeyTikTokSecretPath),
			SubmitInterval: time.Duration(submitInterval) * time.Second,
			PollInterval:   time.Duration(pollInterval) * time.Second,
			PollTimeout:    time.Duration(pollTimeout) * time.Second,
		},
		PostgresURL:        postgresURL,
		PostgresSecretPath: postgresSecretsPath,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		TestModeEnabled:    isTestMode,
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Gets a config value as an int from env vars or a .env file
func getConfigInt(key string) int {
	envVarValue := os.Getenv(key)
	if envVarValue == "" {
		return viper.GetInt(key)
	}
	value, err := strconv.Atoi(envVarValue)
	if err != nil {
		return 0
	}
	return value
}
