package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/webchatbot/panel/internal/chat"
	"github.com/webchatbot/panel/internal/logger"
	"github.com/webchatbot/panel/internal/theme"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		sessionID string
		message   string
	)
	cmd := &cobra.Command{
		Use:   "chat <bot>",
		Short: "Chat with a bot",
		Long: "Opens an interactive chat. Enter sends, Tab picks a suggestion,\n" +
			"Esc cancels a pending reply or quits, Ctrl+C quits at once. Use --message for a single exchange.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bot, err := a.resolveBot(ctx, args[0])
			if err != nil {
				return err
			}
			opts := []chat.Option{chat.WithChannel(bot.Channel)}
			if sessionID != "" {
				opts = append(opts, chat.WithSessionID(sessionID))
			}

			if message != "" {
				session := chat.NewSession(a.log, a.client, bot, opts...)
				reply, err := session.Submit(ctx, message)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
				return err
			}

			// the terminal belongs to the UI from here on
			closer := a.fileLogging()
			defer closer.Close()
			session := chat.NewSession(logger.L, a.client, bot, opts...)

			active, err := a.themeStore().Active()
			if err != nil {
				logger.Warn("theme unavailable, using default", slog.Any("error", err))
				active = theme.Presets()[0]
			}
			model := newChatModel(ctx, session, a.client, newChatStyles(active))
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Reuse a session id instead of generating one")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Send one message, print the reply and exit")
	return cmd
}

// fileLogging switches the global logger to the configured rotating file.
func (a *app) fileLogging() io.Closer {
	path := a.cfg.Log.File
	if path == "" {
		path = filepath.Join(os.TempDir(), "webchatbot-panel.log")
	}
	closer := logger.InitWithFile(a.cfg.Log.Level, a.cfg.Log.Format, logger.FileOptions{
		Path:       path,
		MaxSizeMB:  a.cfg.Log.MaxSizeMB,
		MaxBackups: a.cfg.Log.MaxBackups,
	})
	a.log = logger.L
	a.client = a.newClient()
	return closer
}
