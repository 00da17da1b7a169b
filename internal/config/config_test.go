package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			assert.Equal(t, 8080, cfg.Server.Port)
			assert.Equal(t, "http://localhost:8000", cfg.Feed.BaseURL)
			assert.Equal(t, 4*time.Second, cfg.Feed.RequestTimeout)
			assert.Equal(t, 5*time.Second, cfg.Views.Dashboard.Interval)
			assert.Equal(t, 10*time.Second, cfg.Views.Library.Interval)
			assert.Equal(t, time.Minute, cfg.Poller.MaxBackoff)
			assert.True(t, cfg.Database.Enabled)
			assert.Equal(t, "jobwatch", cfg.Database.Database)
			assert.Equal(t, "job_events", cfg.RabbitMQ.Exchange.Name)
			assert.Equal(t, "job_events_queue", cfg.RabbitMQ.Queue.Name)
			assert.Equal(t, 10, cfg.RabbitMQ.Consumer.PrefetchCount)
			assert.Equal(t, "dashboard-service", cfg.App.Name)
			assert.Equal(t, 4, cfg.Worker.Concurrency)
			assert.Equal(t, 50, cfg.Logging.MaxSizeMB)
			assert.Equal(t, 3, cfg.Logging.MaxBackups)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("testdata/minimal.yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedBaseURL, cfg.Feed.BaseURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.Feed.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Views.Dashboard.Interval)
	assert.Equal(t, 10*time.Second, cfg.Views.Library.Interval)
	assert.Equal(t, 3, cfg.Views.Dashboard.RecentLimit)
	assert.Equal(t, DefaultRedirectCacheTTL, cfg.Server.RedirectCacheTTL)
	assert.Equal(t, time.Duration(0), cfg.Poller.MaxBackoff)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.RabbitMQ.Enabled)

	require.NoError(t, cfg.ValidateDashboardConfig())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("JOBWATCH_TEST_FEED_URL", "https://media.example.com")
	t.Setenv("JOBWATCH_TEST_DB_PASSWORD", "s3cret")

	cfg, err := Load("testdata/env_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com", cfg.Feed.BaseURL)
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func validDashboardConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Feed:   FeedConfig{BaseURL: "http://localhost:8000", RequestTimeout: 5 * time.Second},
		Views: ViewsConfig{
			Dashboard: DashboardViewConfig{Interval: 5 * time.Second, RecentLimit: 3},
			Library:   LibraryViewConfig{Interval: 10 * time.Second},
		},
	}
}

func validWorkerConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Database: "jobwatch"},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "job_events"},
			Queue:    QueueConfig{Name: "job_events_queue"},
		},
		Worker: WorkerConfig{Concurrency: 2, EventTimeout: time.Second, ShutdownTimeout: time.Second},
	}
}

func TestConfig_ValidateDashboardConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, errString: "invalid server port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, errString: "invalid server port"},
		{name: "relative base url", mutate: func(c *Config) { c.Feed.BaseURL = "localhost:8000" }, errString: "invalid feed base_url"},
		{name: "non-http base url", mutate: func(c *Config) { c.Feed.BaseURL = "ftp://media" }, errString: "invalid feed base_url"},
		{name: "zero request timeout", mutate: func(c *Config) { c.Feed.RequestTimeout = 0 }, errString: "request_timeout"},
		{name: "zero dashboard interval", mutate: func(c *Config) { c.Views.Dashboard.Interval = 0 }, errString: "views.dashboard.interval"},
		{name: "negative library interval", mutate: func(c *Config) { c.Views.Library.Interval = -time.Second }, errString: "views.library.interval"},
		{name: "zero recent limit", mutate: func(c *Config) { c.Views.Dashboard.RecentLimit = 0 }, errString: "recent_limit"},
		{name: "negative backoff", mutate: func(c *Config) { c.Poller.MaxBackoff = -time.Second }, errString: "max_backoff"},
		{
			name:      "database enabled without host",
			mutate:    func(c *Config) { c.Database = DatabaseConfig{Enabled: true, Port: 5432, Database: "x"} },
			errString: "database host is required",
		},
		{
			name:   "database disabled is not checked",
			mutate: func(c *Config) { c.Database = DatabaseConfig{Enabled: false} },
		},
		{
			name: "rabbitmq enabled without exchange",
			mutate: func(c *Config) {
				c.RabbitMQ = RabbitMQConfig{Enabled: true, Host: "localhost", Port: 5672}
			},
			errString: "rabbitmq exchange name is required",
		},
		{
			name: "publisher does not need a queue",
			mutate: func(c *Config) {
				c.RabbitMQ = RabbitMQConfig{Enabled: true, Host: "localhost", Port: 5672, Exchange: ExchangeConfig{Name: "job_events"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDashboardConfig()
			tt.mutate(cfg)

			err := cfg.ValidateDashboardConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing database host", mutate: func(c *Config) { c.Database.Host = "" }, errString: "database host is required"},
		{name: "invalid database port", mutate: func(c *Config) { c.Database.Port = 0 }, errString: "invalid database port"},
		{name: "missing database name", mutate: func(c *Config) { c.Database.Database = "" }, errString: "database name is required"},
		{name: "missing rabbitmq host", mutate: func(c *Config) { c.RabbitMQ.Host = "" }, errString: "rabbitmq host is required"},
		{name: "invalid rabbitmq port", mutate: func(c *Config) { c.RabbitMQ.Port = 99999 }, errString: "invalid rabbitmq port"},
		{name: "missing queue", mutate: func(c *Config) { c.RabbitMQ.Queue.Name = "" }, errString: "rabbitmq queue name is required"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Worker.Concurrency = 0 }, errString: "concurrency"},
		{name: "zero event timeout", mutate: func(c *Config) { c.Worker.EventTimeout = 0 }, errString: "event_timeout"},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.Worker.ShutdownTimeout = 0 }, errString: "shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validWorkerConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}
