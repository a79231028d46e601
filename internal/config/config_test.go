package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	assert := assert.New(t)
	cfg := Default()

	assert.Equal(5, cfg.DefaultSpeed)
	assert.Equal(StorageMemory, cfg.Storage)
	assert.NotEmpty(cfg.ServerAddr)
}

func TestConfig_HistoryPath_Disabled(t *testing.T) {
	assert := assert.New(t)
	cfg := Default()
	cfg.HistoryFile = ""

	path, err := cfg.HistoryPath()
	assert.NoError(err)
	assert.Empty(path)
}

func TestConfig_HistoryPath_Enabled(t *testing.T) {
	assert := assert.New(t)
	cfg := Default()
	cfg.HistoryFile = "history"

	path, err := cfg.HistoryPath()
	assert.NoError(err)
	assert.NotEmpty(path)
	assert.Contains(path, appName)
}

func TestDataPath(t *testing.T) {
	assert := assert.New(t)
	path, err := DataPath("automata.db")
	assert.NoError(err)
	assert.Contains(path, appName)
	assert.Contains(path, "automata.db")
}
