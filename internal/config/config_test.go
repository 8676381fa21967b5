package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "8000",
		Env:             "development",
		SessionSecret:   "secure-secret-at-least-32-chars-long",
		SessionTTLHours: 24,
		DBDriver:        "sqlite",
		DBPath:          "worklog.db",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development config", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.SessionSecret = "" }, true},
		{"Zero session TTL", func(c *Config) { c.SessionTTLHours = 0 }, true},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Sqlite without path", func(c *Config) { c.DBPath = "" }, true},
		{"Postgres driver", func(c *Config) { c.DBDriver = "postgres"; c.DBPath = "" }, false},
		{"Production with default secret", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = defaultSessionSecret
		}, true},
		{"Production with short secret", func(c *Config) {
			c.Env = "prod"
			c.SessionSecret = "short"
		}, true},
		{"Production with strong secret", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("DB_DRIVER", "  SQLITE ")
	t.Setenv("DB_PATH", "/tmp/worklog-test.db")
	t.Setenv("SESSION_TTL_HOURS", "12")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "/tmp/worklog-test.db", c.DBPath)
	assert.Equal(t, 12, c.SessionTTLHours)
	assert.Equal(t, "admin", c.AdminUsername)
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	os.Unsetenv("PORT")
	os.Unsetenv("DB_DRIVER")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 168, c.SessionTTLHours)
}

func TestConfig_PostgresDSN(t *testing.T) {
	c := &Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "worklog",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=worklog sslmode=disable", c.PostgresDSN())

	c.DatabaseURL = "postgres://u:p@db/worklog"
	assert.Equal(t, "postgres://u:p@db/worklog", c.PostgresDSN())
}
