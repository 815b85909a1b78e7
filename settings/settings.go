// Package settings loads the process-wide runtime configuration from the
// environment. Values are read once at first use and shared read-only by
// every invocation of the process.
package settings

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the environment-sourced runtime configuration.
type Settings struct {
	// FunctionTimeout bounds handler execution per invocation.
	FunctionTimeout time.Duration

	// ConnectTimeout and ReadTimeout apply to outbound connections opened
	// by bootstrapped clients.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// StrictParams rejects cross-type coercion of body parameters.
	StrictParams bool

	// MaxPoolConnections sizes outbound connection pools.
	MaxPoolConnections int
}

var (
	cached *Settings
	once   sync.Once
)

// Load reads a fresh Settings from the environment. Timeout values are
// expressed in seconds and may be fractional.
func Load() *Settings {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("FUNCTION_TIMEOUT", 30.0)
	v.SetDefault("CONNECT_TIMEOUT", 5.0)
	v.SetDefault("READ_TIMEOUT", 15.0)
	v.SetDefault("STRICT_PARAMS", false)
	v.SetDefault("MAX_POOL_CONNECTIONS", 10)

	return &Settings{
		FunctionTimeout:    seconds(v.GetFloat64("FUNCTION_TIMEOUT")),
		ConnectTimeout:     seconds(v.GetFloat64("CONNECT_TIMEOUT")),
		ReadTimeout:        seconds(v.GetFloat64("READ_TIMEOUT")),
		StrictParams:       v.GetBool("STRICT_PARAMS"),
		MaxPoolConnections: v.GetInt("MAX_POOL_CONNECTIONS"),
	}
}

// Get returns the process-wide settings, loaded once at first use.
func Get() *Settings {
	once.Do(func() {
		cached = Load()
	})

	return cached
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
