package config

import (
	"percept/internal/dataset"
	"percept/internal/playback"
	"percept/internal/replay"
	"percept/internal/setup"
	"percept/internal/trainer"
)

var (
	_ setup.TrainerConfigProvider  = (*Config)(nil)
	_ setup.PlaybackConfigProvider = (*Config)(nil)
	_ setup.DatasetConfigProvider  = (*Config)(nil)
	_ setup.ReplayConfigProvider   = (*Config)(nil)
)

type Config struct {
	SrvAddr  string `envconfig:"PERCEPT_ADDR" default:":8789"`
	Trainer  trainer.Config
	Playback playback.Config
	Dataset  dataset.Config
	Replay   replay.Config
}

func (c Config) TrainerConfig() *trainer.Config {
	return &c.Trainer
}

func (c Config) PlaybackConfig() *playback.Config {
	return &c.Playback
}

func (c Config) DatasetConfig() *dataset.Config {
	return &c.Dataset
}

func (c Config) ReplayConfig() *replay.Config {
	return &c.Replay
}
