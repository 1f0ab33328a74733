package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mirelhq/babelbot/bot"
	"github.com/mirelhq/babelbot/internal/logutil"
	"github.com/mirelhq/babelbot/providers/gemini"
	"github.com/mirelhq/babelbot/search"
	"github.com/mirelhq/babelbot/store"
	"github.com/mirelhq/babelbot/telegram"
	"github.com/mirelhq/babelbot/translate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until the transport disconnects",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via BABELBOT_TELEGRAM_BOT_TOKEN or config)")
			}
			mongoURI := strings.TrimSpace(viper.GetString("mongo.uri"))
			if mongoURI == "" {
				return fmt.Errorf("missing mongo.uri")
			}
			geminiKey := strings.TrimSpace(viper.GetString("gemini.api_key"))
			if geminiKey == "" {
				return fmt.Errorf("missing gemini.api_key")
			}

			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := store.Connect(ctx, mongoURI, viper.GetString("mongo.database"))
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = db.Close(closeCtx)
			}()

			httpClient := &http.Client{Timeout: 60 * time.Second}
			api := telegram.NewAPI(httpClient, viper.GetString("telegram.base_url"), token)

			me, err := api.GetMe(ctx)
			if err != nil {
				return err
			}

			b, err := bot.New(bot.Options{
				Logger:        logger,
				Users:         store.NewUsers(db.UsersCollection()),
				Turns:         store.NewTurns(db.TurnsCollection()),
				LLM:           gemini.New(viper.GetString("gemini.base_url"), geminiKey),
				Translator:    translate.New(viper.GetString("translate.base_url")),
				Search:        search.New(viper.GetString("search.base_url"), viper.GetString("search.api_key"), viper.GetString("search.engine_id")),
				Sender:        telegram.NewSender(api),
				Media:         api,
				Model:         viper.GetString("gemini.model"),
				VisionModel:   viper.GetString("gemini.vision_model"),
				BaseLanguage:  viper.GetString("translate.base_language"),
				FollowUpDelay: viper.GetDuration("followup.delay"),
			})
			if err != nil {
				return err
			}
			defer b.Close()

			poller, err := telegram.NewPoller(telegram.PollerOptions{
				API:            api,
				Logger:         logger,
				Handler:        b.HandleEvent,
				PollTimeout:    viper.GetDuration("telegram.poll_timeout"),
				TaskTimeout:    viper.GetDuration("telegram.task_timeout"),
				MaxConcurrency: viper.GetInt("telegram.max_concurrency"),
			})
			if err != nil {
				return err
			}

			logger.Info("bot_start",
				"bot_username", me.Username,
				"bot_id", me.ID,
				"base_language", viper.GetString("translate.base_language"),
				"followup_delay", viper.GetDuration("followup.delay").String(),
			)

			err = poller.Run(ctx)
			if err != nil && ctx.Err() != nil {
				logger.Info("bot_stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("mongo-uri", "", "MongoDB connection URI.")
	cmd.Flags().String("gemini-api-key", "", "Gemini API key.")
	cmd.Flags().Duration("followup-delay", 5*time.Minute, "Delay before the follow-up nudge.")

	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("telegram-bot-token"))
	_ = viper.BindPFlag("mongo.uri", cmd.Flags().Lookup("mongo-uri"))
	_ = viper.BindPFlag("gemini.api_key", cmd.Flags().Lookup("gemini-api-key"))
	_ = viper.BindPFlag("followup.delay", cmd.Flags().Lookup("followup-delay"))

	return cmd
}
