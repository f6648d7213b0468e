// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	AnthropicAPIKey  string
	SourceChatIDs    []int64
	TargetChatID     int64
	OwnerID          int64
	SignatureTag     string

	PostIntervalMinutes int
	StartHour           int
	EndHour             int
	Timezone            string
	SimilarityThreshold int
	SkipForwards        bool

	QueueFile     string
	PublishedFile string
	LogFile       string
	DatabasePath  string

	RSSFeeds           []string
	RSSIntervalMinutes int

	HTTPAddr  string
	RulesFile string
	LogLevel  string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	target, err := requiredInt64("TARGET_CHAT_ID")
	if err != nil {
		return nil, err
	}

	sources, err := parseIDList(os.Getenv("SOURCE_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_CHAT_IDS: %w", err)
	}

	owner, err := optionalInt64("OWNER_ID", 0)
	if err != nil {
		return nil, err
	}

	interval, err := optionalInt("POST_INTERVAL_MINUTES", 40)
	if err != nil {
		return nil, err
	}
	startHour, err := optionalInt("START_HOUR", 8)
	if err != nil {
		return nil, err
	}
	endHour, err := optionalInt("END_HOUR", 23)
	if err != nil {
		return nil, err
	}
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 24 || startHour >= endHour {
		return nil, fmt.Errorf("invalid publication window [%d, %d)", startHour, endHour)
	}

	threshold, err := optionalInt("SIMILARITY_THRESHOLD", 85)
	if err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in [0, 100], got %d", threshold)
	}

	rssInterval, err := optionalInt("RSS_INTERVAL_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	var feeds []string
	for _, u := range strings.Split(os.Getenv("RSS_FEEDS"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			feeds = append(feeds, u)
		}
	}

	return &Config{
		TelegramBotToken:    token,
		AnthropicAPIKey:     apiKey,
		SourceChatIDs:       sources,
		TargetChatID:        target,
		OwnerID:             owner,
		SignatureTag:        envOrDefault("SIGNATURE_TAG", "@insideryyy"),
		PostIntervalMinutes: interval,
		StartHour:           startHour,
		EndHour:             endHour,
		Timezone:            envOrDefault("TIMEZONE", "Europe/Moscow"),
		SimilarityThreshold: threshold,
		SkipForwards:        parseBool(envOrDefault("SKIP_FORWARDS", "true")),
		QueueFile:           envOrDefault("QUEUE_FILE", "./data/queue.txt"),
		PublishedFile:       envOrDefault("PUBLISHED_FILE", "./data/published.txt"),
		LogFile:             os.Getenv("LOG_FILE"),
		DatabasePath:        envOrDefault("DATABASE_PATH", "./data/bot.db"),
		RSSFeeds:            feeds,
		RSSIntervalMinutes:  rssInterval,
		HTTPAddr:            os.Getenv("HTTP_ADDR"),
		RulesFile:           os.Getenv("RULES_FILE"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// IsSource reports whether a chat ID is one of the monitored sources.
func (c *Config) IsSource(chatID int64) bool {
	for _, id := range c.SourceChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// IsOwner reports whether a user ID is the configured owner.
// Returns false when no owner is configured.
func (c *Config) IsOwner(userID int64) bool {
	return c.OwnerID != 0 && userID == c.OwnerID
}

func requiredInt64(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func optionalInt64(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func optionalInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat ID %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
