package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/client"
	"github.com/webchatbot/panel/internal/config"
	"github.com/webchatbot/panel/internal/logger"
	"github.com/webchatbot/panel/internal/theme"
)

type rootOptions struct {
	configPath string
	apiBaseURL string
	timeout    time.Duration
	output     string
	channel    string
	logLevel   string
}

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	opts   rootOptions
	cfg    config.Config
	client *client.Client
	log    *slog.Logger

	baseURL string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	a := &app{}

	defaultConfig := strings.TrimSpace(os.Getenv(config.EnvConfigPath))
	if defaultConfig == "" {
		defaultConfig = config.DefaultConfigPath
	}

	root := &cobra.Command{
		Use:           "panel",
		Short:         "Chatbot settings control panel",
		Long:          "Edit chatbot settings and rules, manage UI themes and chat with a bot.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", defaultConfig, "Path to config.toml")
	flags.StringVar(&a.opts.apiBaseURL, "api-url", "", "API base URL (overrides "+config.EnvAPIBaseURL+")")
	flags.DurationVar(&a.opts.timeout, "timeout", 0, "Request timeout (default from config)")
	flags.StringVarP(&a.opts.output, "output", "o", "table", "Output format: table, json or yaml")
	flags.StringVar(&a.opts.channel, "channel", "", "Channel override for the bot")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "Log level (default from config)")

	root.AddCommand(
		newBotsCmd(a),
		newSettingsCmd(a),
		newRulesCmd(a),
		newThemeCmd(a),
		newChatCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	switch a.opts.output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", a.opts.output)
	}

	level := cfg.Log.Level
	if a.opts.logLevel != "" {
		level = a.opts.logLevel
	}
	a.cfg.Log.Level = level
	// stdout belongs to command output, so diagnostics go to stderr
	logger.InitWithWriter(os.Stderr, level, cfg.Log.Format)
	a.log = logger.L

	a.timeout = a.opts.timeout
	if a.timeout <= 0 {
		a.timeout = cfg.API.RequestTimeout()
	}
	a.baseURL = config.ResolveAPIBaseURL(a.opts.apiBaseURL, cfg)
	a.client = a.newClient()
	a.log.Debug("panel ready",
		slog.String("command", cmd.CommandPath()),
		slog.String("api", a.baseURL),
	)
	return nil
}

func (a *app) newClient() *client.Client {
	return client.New(a.baseURL,
		client.WithTimeout(a.timeout),
		client.WithLogger(a.log),
	)
}

// resolveBot looks the bot up in the catalog. Unknown bots are still usable
// with no capabilities, so a bot missing from the list can be configured.
func (a *app) resolveBot(ctx context.Context, id string) (bots.Bot, error) {
	id = strings.TrimSpace(id)
	if err := bots.ValidateID(id); err != nil {
		return bots.Bot{}, err
	}
	bot := bots.Bot{ID: id}
	catalog, err := a.client.FetchCatalog(ctx)
	if err != nil {
		a.log.Warn("bot catalog unavailable", slog.Any("error", err))
	} else if found, err := catalog.Find(id); err == nil {
		bot = found
	} else {
		a.log.Warn("bot not in catalog", slog.String("bot_id", id))
	}
	if a.opts.channel != "" {
		bot.Channel = a.opts.channel
	}
	return bot, nil
}

func (a *app) themeStore() *theme.Store {
	return theme.NewStore(a.cfg.Theme.Path)
}
