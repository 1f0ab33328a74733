package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.task_timeout", 2*time.Minute)
	viper.SetDefault("telegram.max_concurrency", 3)

	viper.SetDefault("mongo.database", "telegram_bot")

	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("gemini.model", "gemini-pro")
	viper.SetDefault("gemini.vision_model", "gemini-pro-vision")

	viper.SetDefault("translate.base_url", "https://translate.googleapis.com")
	viper.SetDefault("translate.base_language", "en")

	viper.SetDefault("search.base_url", "https://www.googleapis.com")

	viper.SetDefault("followup.delay", 5*time.Minute)

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
}
