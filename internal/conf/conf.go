package conf

import (
	"os"
	"strconv"
)

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// AI completion configuration (optional)
	AI AIConfig

	// Data directory for JSON stores and the usage database
	DataDir string

	// Webhook configuration (webhook entry point only)
	Webhook WebhookConfig

	// Auto-delete delays, in minutes
	AutoDelete AutoDeleteConfig

	// Daily usage reset hour (0-23)
	ResetHour int

	// Debug mode
	Debug bool
}

// TelegramConfig contains Telegram configuration
type TelegramConfig struct {
	Token   string
	OwnerID int64
}

// AIConfig contains completion provider configuration
type AIConfig struct {
	APIKey       string
	BaseURL      string
	SystemPrompt string
	ModelsPath   string // YAML model roster; empty uses built-in defaults
}

// WebhookConfig contains webhook configuration
type WebhookConfig struct {
	URL  string
	Port string
}

// AutoDeleteConfig contains auto-delete delays
type AutoDeleteConfig struct {
	CommandMinutes int // inbound command messages and error replies
	ReplyMinutes   int // successful bot replies
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	ownerID, _ := strconv.ParseInt(os.Getenv("OWNER_ID"), 10, 64)

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	resetHour := 0
	if val := os.Getenv("USAGE_RESET_HOUR"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			resetHour = parsed
		}
	}

	commandMinutes := 3
	if val := os.Getenv("AUTODELETE_COMMAND_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			commandMinutes = parsed
		}
	}

	replyMinutes := 5
	if val := os.Getenv("AUTODELETE_REPLY_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			replyMinutes = parsed
		}
	}

	return &Config{
		Telegram: TelegramConfig{
			Token:   os.Getenv("BOT_TOKEN"),
			OwnerID: ownerID,
		},
		AI: AIConfig{
			APIKey:       os.Getenv("AI_API_KEY"),
			BaseURL:      os.Getenv("AI_BASE_URL"),
			SystemPrompt: os.Getenv("AI_SYSTEM_PROMPT"),
			ModelsPath:   os.Getenv("MODELS_CONFIG_PATH"),
		},
		DataDir: dataDir,
		Webhook: WebhookConfig{
			URL:  os.Getenv("WEBHOOK_URL"),
			Port: port,
		},
		AutoDelete: AutoDeleteConfig{
			CommandMinutes: commandMinutes,
			ReplyMinutes:   replyMinutes,
		},
		ResetHour: resetHour,
		Debug:     os.Getenv("DEBUG") == "true",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return &ConfigError{Field: "BOT_TOKEN", Message: "required"}
	}
	if c.Telegram.OwnerID == 0 {
		return &ConfigError{Field: "OWNER_ID", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
