package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testDbSection struct {
	Host     string
	Password string `sensitive:"true"`
}

type testConfig struct {
	Database testDbSection
	Token    string `sensitive:"true"`
	Origins  []string
	Timeout  *int
	internal string
}

func TestConfigLinesMasksSensitiveValues(t *testing.T) {
	cfg := testConfig{
		Database: testDbSection{Host: "db.local", Password: "secret"},
		Origins:  []string{"a", "b"},
		internal: "hidden",
	}

	lines := ConfigLines(&cfg)

	assert.Equal(t, []string{
		"database.host=db.local",
		"database.password=*****",
		"token=",
		"origins=[a b]",
		"timeout=<nil>",
	}, lines)
}

func TestNewStorageTLSConfig(t *testing.T) {
	cfg, err := NewStorageTLSConfig("", true)
	assert.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.NotNil(t, cfg.RootCAs)

	_, err = NewStorageTLSConfig("-----BEGIN CERTIFICATE-----\nnot a cert\n-----END CERTIFICATE-----", false)
	assert.Error(t, err)

	_, err = NewStorageTLSConfig("%%%not-base64%%%", false)
	assert.Error(t, err)
}
