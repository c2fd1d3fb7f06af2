package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_AdvisoryConstants(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "Case", cfg.Advisory.Collection)
	assert.Equal(t, 2, cfg.Advisory.PrefixLength)
	assert.Equal(t, 30, cfg.Advisory.PrefixLimit)
	assert.Equal(t, 3, cfg.Advisory.MaxMatches)
	assert.Equal(t, 2, cfg.Advisory.MaxAlternatives)
	assert.Equal(t, 5.0, cfg.Advisory.PortfolioTriggerRatio)
	assert.Equal(t, 1.1, cfg.Advisory.OvershootFactor)
	assert.Equal(t, 1000.0, cfg.Advisory.EnergyMultiplier)
	assert.False(t, cfg.Advisory.DisableEnrichment)
	assert.Equal(t, "碳減量(公噸/年)", cfg.Advisory.Fields.Carbon)
	assert.Equal(t, "節能潛力", cfg.Advisory.Fields.Energy)
	assert.Equal(t, "案例公司產業別", cfg.Advisory.Fields.Industry)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Advisory.OvershootFactor = 1.0
	cfg.Advisory.Fields.System = "system"
	cfg.Worker.SyncInterval = time.Minute

	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 1.0, cfg.Advisory.OvershootFactor)
	assert.Equal(t, "system", cfg.Advisory.Fields.System)
	assert.Equal(t, time.Minute, cfg.Worker.SyncInterval)
}

func TestApplyDefaults_TextGenModelPerProvider(t *testing.T) {
	cfg := &Config{TextGen: TextGenConfig{Provider: TextGenProviderGemini}}
	ApplyDefaults(cfg)
	assert.Equal(t, DefaultGeminiModel, cfg.TextGen.Model)

	cfg = &Config{TextGen: TextGenConfig{Provider: TextGenProviderOpenAI}}
	ApplyDefaults(cfg)
	assert.Equal(t, DefaultOpenAIModel, cfg.TextGen.Model)

	cfg = &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, TextGenProviderNone, cfg.TextGen.Provider)
	assert.Empty(t, cfg.TextGen.Model)
}
