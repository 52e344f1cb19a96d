package config

import "github.com/caarlos0/env/v11"

// Config carries everything the commands need. Credentials come from the
// environment via FromEnv; run-level options are filled in from CLI flags by
// the command wiring. The struct is passed by reference into each
// collaborator at construction, there is no process-wide config state.
type Config struct {
	Octopus   OctopusConfig
	GivEnergy GivEnergyConfig
	Solcast   SolcastConfig
	Mqtt      MqttConfig

	DatabaseURL      string
	MigrationsFolder string
	LogLevel         string
}

type OctopusConfig struct {
	APIKey  string `env:"OCTOPUS_API_KEY"`
	Account string `env:"OCTOPUS_ACCOUNT"`
}

type GivEnergyConfig struct {
	APIKey         string `env:"GIVENERGY_API_KEY"`
	InverterSerial string `env:"GIVENERGY_INVERTER_SERIAL"`
}

type SolcastConfig struct {
	APIKey     string `env:"SOLCAST_API_KEY"`
	ResourceID string `env:"SOLCAST_RESOURCE_ID"`
}

type MqttConfig struct {
	Host     string `env:"MQTT_HOST"`
	Username string `env:"MQTT_USER"`
	Password string `env:"MQTT_PASS"`
}

// FromEnv parses collaborator credentials from the environment.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(&cfg.Octopus); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.GivEnergy); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Solcast); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Mqtt); err != nil {
		return nil, err
	}
	return cfg, nil
}
