package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/cirelion/quorum/bot"
	"github.com/cirelion/quorum/common"
	"github.com/cirelion/quorum/polls"
	"github.com/cirelion/quorum/scheduler"
	"github.com/cirelion/quorum/templates"
)

func main() {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	conf, err := common.LoadRunConfig()
	if err != nil {
		logrus.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	common.SetupLogging(conf)

	registry := templates.NewRegistry()
	if conf.TemplateFile != "" {
		err = registry.LoadFile(conf.TemplateFile)
		if err != nil {
			logrus.WithError(err).Error("failed loading template file")
			os.Exit(1)
		}
	}

	pollsPlugin := polls.RegisterPlugin(registry)
	scheduler.RegisterPlugin(registry, pollsPlugin, conf)

	err = bot.Run(conf)
	if err != nil {
		logrus.WithError(err).Error("bot stopped")
		os.Exit(1)
	}
}
