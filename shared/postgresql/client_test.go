package postgresql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "plain",
			config: Config{Host: "localhost", Port: 5432, User: "postgres", Password: "secret", Database: "jobwatch", SSLMode: "require"},
			want:   "host=localhost port=5432 user=postgres password=secret dbname=jobwatch sslmode=require",
		},
		{
			name:   "default sslmode",
			config: Config{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d"},
			want:   "host=db port=5432 user=u password=p dbname=d sslmode=disable",
		},
		{
			name:   "password needing quotes",
			config: Config{Host: "db", Port: 5432, User: "u", Password: `it's a pw`, Database: "d", SSLMode: "disable"},
			want:   `host=db port=5432 user=u password='it\'s a pw' dbname=d sslmode=disable`,
		},
		{
			name:   "empty password",
			config: Config{Host: "db", Port: 5432, User: "u", Database: "d", SSLMode: "disable"},
			want:   "host=db port=5432 user=u password='' dbname=d sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}

func TestConfig_ConnectTimeout(t *testing.T) {
	assert.Equal(t, defaultConnectTimeout, (&Config{}).connectTimeout())
	assert.Equal(t, 3*time.Second, (&Config{ConnectTimeout: 3 * time.Second}).connectTimeout())
}
