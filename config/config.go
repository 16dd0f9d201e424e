package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"opentalk_server/models"
)

// Config holds the server settings resolved from .env, the ini file and the environment
type Config struct {
	Port           string
	AWSRegion      string
	S3Bucket       string
	RedisAddr      string
	LogLevel       string
	PersistTimeout time.Duration
	StatsSchedule  string

	FollowThreshold time.Duration
	FeedThreshold   time.Duration
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		PersistTimeout:  10 * time.Second,
		StatsSchedule:   "@every 1m",
		FollowThreshold: models.DefaultFollowThreshold * time.Second,
		FeedThreshold:   models.DefaultFeedThreshold * time.Second,
	}
}

// Load reads .env (unless ENV_CHEK is set), then the ini file named by SERVER_CONFIG
// (default server.ini), then environment variables. Later sources win.
func Load() *Config {
	if os.Getenv("ENV_CHEK") == "" {
		if err := godotenv.Load(); err != nil {
			log.Debug("No .env file loaded, using process environment")
		}
	}

	cfg := Default()

	location := "server.ini"
	if v := os.Getenv("SERVER_CONFIG"); v != "" {
		location = v
	}
	if file, err := ini.Load(location); err == nil {
		cfg.applyFile(file)
		log.WithField("config", location).Info("Loaded configuration file")
	} else if os.Getenv("SERVER_CONFIG") != "" {
		log.WithField("config", location).WithError(err).Warn("Failed to load configuration file")
	}

	cfg.applyEnv(os.Getenv)
	return cfg
}

func (c *Config) applyFile(file *ini.File) {
	server := file.Section("server")
	c.Port = server.Key("port").MustString(c.Port)
	c.LogLevel = server.Key("log_level").MustString(c.LogLevel)
	c.PersistTimeout = server.Key("persist_timeout").MustDuration(c.PersistTimeout)
	c.StatsSchedule = server.Key("stats_schedule").MustString(c.StatsSchedule)

	aws := file.Section("aws")
	c.AWSRegion = aws.Key("region").MustString(c.AWSRegion)
	c.S3Bucket = aws.Key("s3_bucket").MustString(c.S3Bucket)

	c.RedisAddr = file.Section("redis").Key("addr").MustString(c.RedisAddr)

	matching := file.Section("matching")
	c.FollowThreshold = positiveSeconds(matching.Key("follow_threshold_seconds").MustInt(0), c.FollowThreshold)
	c.FeedThreshold = positiveSeconds(matching.Key("feed_threshold_seconds").MustInt(0), c.FeedThreshold)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := getenv("AWS_REGION"); v != "" {
		c.AWSRegion = v
	}
	if v := getenv("S3_BUCKET_NAME"); v != "" {
		c.S3Bucket = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("PERSIST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.PersistTimeout = d
		}
	}
	if v, ok := lookup(getenv, "STATS_SCHEDULE"); ok {
		c.StatsSchedule = v
	}
	if v := getenv("FOLLOW_THRESHOLD_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FollowThreshold = positiveSeconds(n, c.FollowThreshold)
		}
	}
	if v := getenv("FEED_THRESHOLD_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FeedThreshold = positiveSeconds(n, c.FeedThreshold)
		}
	}
}

// positiveSeconds converts n seconds, keeping fallback for zero or negative values
func positiveSeconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// lookup treats the literal "off" as an explicit empty value so a schedule can be disabled
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	switch v {
	case "":
		return "", false
	case "off":
		return "", true
	}
	return v, true
}

// SetupLogging configures the global logrus logger
func SetupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, falling back to info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
