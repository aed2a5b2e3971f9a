package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the whole process configuration surface. Everything has a
// working default so the binary runs with no environment at all.
type Config struct {
	Server struct {
		Addr     string
		LogLevel string
	}
	Chat struct {
		// CleanupPollFrequency is how often the reaper sweeps. Independent
		// from the idle bounds below.
		CleanupPollFrequency time.Duration
		// MaxMessages caps each room's ledger; oldest messages are evicted
		// first once exceeded.
		MaxMessages int
		// MaxIdleOutside evicts visitors who are not in an active two-party
		// chat after this much silence.
		MaxIdleOutside time.Duration
		// MaxIdleInside evicts visitors who are in an active two-party chat
		// after this much silence.
		MaxIdleInside time.Duration
		// StrictInvariants makes broken-invariant checks panic instead of
		// logging and skipping. Meant for tests and debug runs.
		StrictInvariants bool
	}
}

// Load reads the configuration from the environment with viper.
func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("chat.cleanup_poll_frequency", 5*time.Second)
	v.SetDefault("chat.max_messages", 100)
	v.SetDefault("chat.max_idle_outside", 20*time.Second)
	v.SetDefault("chat.max_idle_inside", 300*time.Second)
	v.SetDefault("chat.strict_invariants", false)

	// Map envs
	v.BindEnv("server.addr", "ADDR")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("chat.cleanup_poll_frequency", "CHAT_CLEANUP_POLL_FREQUENCY")
	v.BindEnv("chat.max_messages", "CHAT_MAX_MESSAGES")
	v.BindEnv("chat.max_idle_outside", "CHAT_MAX_IDLE_OUTSIDE")
	v.BindEnv("chat.max_idle_inside", "CHAT_MAX_IDLE_INSIDE")
	v.BindEnv("chat.strict_invariants", "CHAT_STRICT_INVARIANTS")

	var c Config
	c.Server.Addr = v.GetString("server.addr")
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Chat.CleanupPollFrequency = v.GetDuration("chat.cleanup_poll_frequency")
	c.Chat.MaxMessages = v.GetInt("chat.max_messages")
	c.Chat.MaxIdleOutside = v.GetDuration("chat.max_idle_outside")
	c.Chat.MaxIdleInside = v.GetDuration("chat.max_idle_inside")
	c.Chat.StrictInvariants = v.GetBool("chat.strict_invariants")

	return c
}
