package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("WHISK_APIHOST", "api.example.com")
	t.Setenv("WHISK_AUTH", "user:secret")
	t.Setenv("WHISK_NAMESPACE", "team-a")
	t.Setenv("WHISK_TIMEOUT", "5s")
	t.Setenv("WHISK_BLOCKING_TIMEOUT", "90s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "api.example.com", cfg.Host)
	assert.Equal(t, "user:secret", cfg.AuthKey)
	assert.Equal(t, "team-a", cfg.Namespace)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 90*time.Second, cfg.BlockingTimeout)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("WHISK_APIHOST", "api.example.com")
	t.Setenv("WHISK_AUTH", "user:secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultBlockingTimeout, cfg.BlockingTimeout)
}

func TestFromEnvMissingHost(t *testing.T) {
	t.Setenv("WHISK_APIHOST", "")
	t.Setenv("WHISK_AUTH", "user:secret")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "api host")
}

func TestValidate(t *testing.T) {
	valid := Config{Host: "api.example.com", AuthKey: "user:secret"}
	assert.NoError(t, valid.Validate())

	noHost := Config{AuthKey: "user:secret"}
	assert.ErrorContains(t, noHost.Validate(), "api host")

	badAuth := Config{Host: "api.example.com", AuthKey: "nosecret"}
	assert.ErrorContains(t, badAuth.Validate(), "key:secret")

	negative := Config{Host: "api.example.com", AuthKey: "u:s", Timeout: -time.Second}
	assert.ErrorContains(t, negative.Validate(), "negative")
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com", Config{Host: "api.example.com"}.BaseURL())
	assert.Equal(t, "http://localhost:3233", Config{Host: "http://localhost:3233"}.BaseURL())
	assert.Equal(t, "https://api.example.com", Config{Host: "https://api.example.com/"}.BaseURL())
}

func TestCredentials(t *testing.T) {
	user, secret := Config{AuthKey: "user:se:cret"}.Credentials()
	assert.Equal(t, "user", user)
	assert.Equal(t, "se:cret", secret)

	user, secret = Config{AuthKey: "lonely"}.Credentials()
	assert.Equal(t, "lonely", user)
	assert.Empty(t, secret)
}
