package yaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type feedConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	Port        string `yaml:"port" validate:"port"`
	Timeout     string `yaml:"timeout" validate:"duration"`
	Strategy    string `yaml:"strategy" validate:"oneof=TTL|LRU|LFU|ADAPTIVE"`
	MaxSize     int    `yaml:"max_size" validate:"min=1,max=100000"`
	SuccessRate float64
}

func validFeedConfig() feedConfig {
	return feedConfig{
		BaseURL:  "https://api.coingecko.com/api/v3",
		Port:     "9010",
		Timeout:  "10s",
		Strategy: "ADAPTIVE",
		MaxSize:  1000,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*feedConfig)
		wantErr string
	}{
		{"valid config", func(c *feedConfig) {}, ""},
		{"missing base url", func(c *feedConfig) { c.BaseURL = "" }, "required field"},
		{"relative url", func(c *feedConfig) { c.BaseURL = "/api/v3" }, "invalid URL"},
		{"bad port", func(c *feedConfig) { c.Port = "99999" }, "invalid port"},
		{"bad duration", func(c *feedConfig) { c.Timeout = "ten seconds" }, "invalid duration"},
		{"unknown strategy", func(c *feedConfig) { c.Strategy = "FIFO" }, "not in allowed values"},
		{"size below min", func(c *feedConfig) { c.MaxSize = 0 }, "less than minimum"},
		{"size above max", func(c *feedConfig) { c.MaxSize = 200000 }, "greater than maximum"},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validFeedConfig()
			tt.mutate(&cfg)

			err := v.ValidateConfig(&cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigNested(t *testing.T) {
	type wrapper struct {
		Feed feedConfig `yaml:"feed"`
	}

	v := NewValidator()

	cfg := wrapper{Feed: validFeedConfig()}
	assert.NoError(t, v.ValidateConfig(&cfg))

	cfg.Feed.Timeout = "bogus"
	assert.ErrorContains(t, v.ValidateConfig(&cfg), "invalid duration")
}

func TestValidateConfigRejectsNonStruct(t *testing.T) {
	v := NewValidator()
	assert.Error(t, v.ValidateConfig(42))
}

func TestEmptyDurationAllowed(t *testing.T) {
	cfg := validFeedConfig()
	cfg.Timeout = ""
	assert.NoError(t, NewValidator().ValidateConfig(&cfg))
}
