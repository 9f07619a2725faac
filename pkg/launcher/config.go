package launcher

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blog-platform/blogctl/pkg/errors"
)

// Config is the launcher's top-level configuration. Every field has a
// default matching the platform's conventions, so running without a
// config file is the common case.
type Config struct {
	Backend   ServiceConfig   `yaml:"backend"`
	Frontend  ServiceConfig   `yaml:"frontend"`
	Datastore DatastoreConfig `yaml:"datastore"`
	Health    HealthConfig    `yaml:"health"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
}

// ServiceConfig describes one of the two supervised services.
type ServiceConfig struct {
	Dir            string `yaml:"dir,omitempty"`
	PortBase       int    `yaml:"port_base,omitempty"`
	PortAttempts   int    `yaml:"port_attempts,omitempty"`
	BuildCommand   string `yaml:"build_command,omitempty"`
	InstallCommand string `yaml:"install_command,omitempty"`
	RunCommand     string `yaml:"run_command,omitempty"`
	HealthPath     string `yaml:"health_path,omitempty"`
	LogFileName    string `yaml:"log_file_name,omitempty"`
}

// DatastoreConfig locates the external MongoDB the backend depends on.
// The launcher never manages it; it only checks reachability.
type DatastoreConfig struct {
	Port int `yaml:"port,omitempty"`
}

// HealthConfig bounds the readiness polling.
type HealthConfig struct {
	MaxAttempts  int           `yaml:"max_attempts,omitempty"`
	Interval     time.Duration `yaml:"interval,omitempty"`
	CheckTimeout time.Duration `yaml:"check_timeout,omitempty"`
	TailLines    int           `yaml:"tail_lines,omitempty"`
}

// ShutdownConfig bounds service teardown.
type ShutdownConfig struct {
	GracePeriod time.Duration `yaml:"grace_period,omitempty"`
}

// DefaultConfig returns the configuration the launcher runs with when no
// config file is present.
func DefaultConfig() *Config {
	config := &Config{}
	setConfigDefaults(config)
	return config
}

// LoadConfigFromFile loads launcher configuration from a YAML file and
// applies defaults for everything left unset. An empty filename yields
// the defaults.
func LoadConfigFromFile(filename string) (*Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	setConfigDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setConfigDefaults(config *Config) {
	if config.Backend.Dir == "" {
		config.Backend.Dir = "backend"
	}
	if config.Backend.PortBase == 0 {
		config.Backend.PortBase = 8082
	}
	if config.Backend.PortAttempts == 0 {
		config.Backend.PortAttempts = 10
	}
	if config.Backend.BuildCommand == "" {
		config.Backend.BuildCommand = "mvn clean compile"
	}
	if config.Backend.RunCommand == "" {
		config.Backend.RunCommand = "mvn spring-boot:run"
	}
	if config.Backend.HealthPath == "" {
		config.Backend.HealthPath = "/api/posts"
	}
	if config.Backend.LogFileName == "" {
		config.Backend.LogFileName = "startup.log"
	}

	if config.Frontend.Dir == "" {
		config.Frontend.Dir = "frontend"
	}
	if config.Frontend.PortBase == 0 {
		config.Frontend.PortBase = 3002
	}
	if config.Frontend.PortAttempts == 0 {
		config.Frontend.PortAttempts = 10
	}
	if config.Frontend.BuildCommand == "" {
		config.Frontend.BuildCommand = "npm run build"
	}
	if config.Frontend.InstallCommand == "" {
		config.Frontend.InstallCommand = "npm install"
	}
	if config.Frontend.RunCommand == "" {
		config.Frontend.RunCommand = "npm start"
	}
	if config.Frontend.HealthPath == "" {
		config.Frontend.HealthPath = "/"
	}
	if config.Frontend.LogFileName == "" {
		config.Frontend.LogFileName = "startup.log"
	}

	if config.Datastore.Port == 0 {
		config.Datastore.Port = 27017
	}

	if config.Health.MaxAttempts == 0 {
		config.Health.MaxAttempts = 30
	}
	if config.Health.Interval == 0 {
		config.Health.Interval = 2 * time.Second
	}
	if config.Health.CheckTimeout == 0 {
		config.Health.CheckTimeout = 2 * time.Second
	}
	if config.Health.TailLines == 0 {
		config.Health.TailLines = 100
	}

	if config.Shutdown.GracePeriod == 0 {
		config.Shutdown.GracePeriod = 5 * time.Second
	}
}

// ValidateConfig rejects configurations the launcher cannot act on.
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	for _, svc := range []struct {
		name string
		cfg  *ServiceConfig
	}{
		{"backend", &config.Backend},
		{"frontend", &config.Frontend},
	} {
		if svc.cfg.PortBase <= 0 || svc.cfg.PortBase > 65535 {
			return errors.NewValidationError("port base out of range", nil).
				WithContext("service", svc.name).
				WithContext("port_base", svc.cfg.PortBase)
		}
		if svc.cfg.PortAttempts < 0 {
			return errors.NewValidationError("port attempts cannot be negative", nil).
				WithContext("service", svc.name)
		}
	}

	if config.Datastore.Port <= 0 || config.Datastore.Port > 65535 {
		return errors.NewValidationError("datastore port out of range", nil).
			WithContext("port", config.Datastore.Port)
	}

	if config.Health.MaxAttempts < 0 {
		return errors.NewValidationError("health max attempts cannot be negative", nil)
	}

	return nil
}
