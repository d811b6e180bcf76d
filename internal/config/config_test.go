package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, 3, cfg.FollowUp.MaxFollowUps)
	assert.Equal(t, 72*time.Hour, cfg.FollowUp.Delay)
	assert.Equal(t, 3, cfg.FollowUp.FetchRetries)
	assert.Equal(t, 15*time.Second, cfg.Workers.SendingInterval)
	assert.Equal(t, 2*time.Minute, cfg.Workers.InboundInterval)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.Gemini.Model)
	assert.Equal(t, "outreach_events", cfg.AMQP.Queue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_FOLLOW_UPS", "5")
	t.Setenv("FOLLOW_UP_DELAY", "24h")
	t.Setenv("SENDING_INTERVAL", "5s")
	t.Setenv("DB_NAME", "outreach_test")

	cfg := Load()

	assert.Equal(t, 5, cfg.FollowUp.MaxFollowUps)
	assert.Equal(t, 24*time.Hour, cfg.FollowUp.Delay)
	assert.Equal(t, 5*time.Second, cfg.Workers.SendingInterval)
	assert.Contains(t, cfg.DB.DSN(), "/outreach_test?")
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("MAX_FOLLOW_UPS", "many")
	t.Setenv("FOLLOW_UP_DELAY", "soon")

	cfg := Load()

	assert.Equal(t, 3, cfg.FollowUp.MaxFollowUps)
	assert.Equal(t, 72*time.Hour, cfg.FollowUp.Delay)
}
