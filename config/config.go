/*
Package config loads server settings from defaults, an optional .env file
and TUITION_-prefixed environment variables.

PRECEDENCE (highest first):
  1. Command-line flags (applied by cmd/server after Load)
  2. Environment variables, e.g. TUITION_PORT=9090
  3. Variables from the .env file (never override the real environment)
  4. Defaults below

KEYS:
  env           DEV, TEST or PROD (default DEV)
  port          HTTP port (default 8080)
  db_path       SQLite path, ":memory:" allowed (default tuition.db)
  cors_origins  Comma-separated allowed origins
  debug         Verbose logging (default true outside PROD)
*/
package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TUITION"

type Config struct {
	Env         string
	Port        int
	DBPath      string
	CORSOrigins []string
	Debug       bool
}

// Load reads configuration. dotEnvPath may name a file that does not exist;
// only other stat or parse failures are errors.
func Load(dotEnvPath string) (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("env", "DEV")
	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "tuition.db")
	v.SetDefault("cors_origins", "http://localhost:5173,http://localhost:8080")
	v.SetDefault("debug", true)

	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", dotEnvPath, err)
			}
			log.Printf("[Config] loaded %s", dotEnvPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", dotEnvPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := &Config{
		Env:         strings.ToUpper(v.GetString("env")),
		Port:        v.GetInt("port"),
		DBPath:      v.GetString("db_path"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		Debug:       v.GetBool("debug"),
	}
	if _, explicit := os.LookupEnv(EnvPrefix + "_DEBUG"); cfg.Env == "PROD" && !explicit {
		cfg.Debug = false
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
