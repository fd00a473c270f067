package common

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

var logger = GetFixedPrefixLogger("common")

// GetPluginLogger returns a logger scoped to the given plugin.
func GetPluginLogger(plugin Plugin) *logrus.Entry {
	return GetFixedPrefixLogger(plugin.PluginInfo().SysName)
}

// GetFixedPrefixLogger returns a logger with a fixed prefix field.
func GetFixedPrefixLogger(prefix string) *logrus.Entry {
	return logrus.WithField("p", prefix)
}

// SetupLogging configures the standard logger from the run config. When a
// log file is configured, output goes both to stderr and a size-rotated file.
func SetupLogging(conf *RunConfig) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if conf.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}
}
