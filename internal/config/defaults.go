package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 30
	}
	if cfg.Mock.Host == "" {
		cfg.Mock.Host = "localhost"
	}
	if cfg.Mock.Port == 0 {
		cfg.Mock.Port = 8000
	}
}

// Default returns a config with all defaults applied, for running without
// a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
