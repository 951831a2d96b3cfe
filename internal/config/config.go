package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/marzolo/thoughts-bot/internal/constants"
)

// Config holds all configuration parameters of the bot process.
// Values come from the environment (a .env file is loaded in main).
type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_APITOKEN"`
	BotUsername   string `envconfig:"BOT_USERNAME"`
	AppEnv        string `envconfig:"ENV" default:"prod"`

	// AdminChatID is the single chat allowed to resolve approvals and the
	// recipient of operational error notifications.
	AdminChatID int64 `envconfig:"ADMIN_CHAT_ID"`

	// RegistryPath is the JSON document holding all registered chats.
	RegistryPath string `envconfig:"REGISTRY_PATH" default:"config.json"`

	// RepoDir is the checkout of the site repo; git commands run there.
	RepoDir string `envconfig:"REPO_DIR" default:"."`

	// ContentDir is where thought/link records are written, relative to
	// RepoDir.
	ContentDir string `envconfig:"CONTENT_DIR" default:"src/bot_gen/thoughts"`

	// PublishMode selects the publishing strategy: "git" commits and pushes
	// the content directory, "dispatch" calls the automation endpoint.
	PublishMode string `envconfig:"PUBLISH_MODE" default:"git"`

	GitBranch  string `envconfig:"GIT_BRANCH" default:"main"`
	SSHKeyPath string `envconfig:"SSH_KEY_PATH" default:"secrets/bot_ssh_key"`

	DispatchURL   string `envconfig:"DISPATCH_URL"`
	DispatchToken string `envconfig:"DISPATCH_TOKEN"`

	// LinkDenylist is a comma-separated list of regexps; URLs matching any
	// of them are dropped by the link watcher (short-form video spam).
	LinkDenylist string `envconfig:"LINK_DENYLIST" default:"instagram\\.com/reels?/,tiktok\\.com/"`

	// APIToken protects the read-only ops API. Empty disables the API.
	APIToken string `envconfig:"API_TOKEN"`
	Port     string `envconfig:"PORT" default:"8080"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_APITOKEN is not set")
	}
	if cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("ADMIN_CHAT_ID is not set")
	}

	switch cfg.PublishMode {
	case constants.PUBLISH_MODE_GIT:
		// Nothing to validate up front; a missing key surfaces on push.
	case constants.PUBLISH_MODE_DISPATCH:
		if cfg.DispatchURL == "" {
			return nil, fmt.Errorf("PUBLISH_MODE=dispatch requires DISPATCH_URL")
		}
		if cfg.DispatchToken == "" {
			log.Println("Warning: DISPATCH_TOKEN is not set, dispatch calls will be unauthenticated.")
		}
	default:
		return nil, fmt.Errorf("unknown PUBLISH_MODE %q (want %q or %q)",
			cfg.PublishMode, constants.PUBLISH_MODE_GIT, constants.PUBLISH_MODE_DISPATCH)
	}

	if cfg.APIToken == "" {
		log.Println("Warning: API_TOKEN is not set, the ops API will not be served.")
	}
	if cfg.BotUsername == "" {
		log.Println("Warning: BOT_USERNAME is not set.")
	}

	log.Println("Configuration loaded.")
	return &cfg, nil
}

// DenylistPatterns returns the configured denylist as individual patterns.
func (c *Config) DenylistPatterns() []string {
	var out []string
	for _, p := range strings.Split(c.LinkDenylist, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
