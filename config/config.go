package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`
	WALDir      string `yaml:"wal_dir"`
	Sandbox     bool   `yaml:"sandbox"`
	LogLevel    string `yaml:"log_level"`
}

// Get loads configuration from a YAML file when --config is provided,
// otherwise from CLI flags. DATABASE_URL from the environment wins over
// both, so deployments can keep credentials out of files.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", ":8080", "HTTP listen address")
	db := flag.String("db", "", "postgres connection string")
	walDir := flag.String("waldir", "", "execution audit log directory")
	sandbox := flag.Bool("sandbox", false, "use in-memory sandbox platform sessions")
	logLevel := flag.String("loglevel", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var conf Config
	if *configPath != "" {
		loaded, err := fromYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		conf = loaded
	} else {
		conf = Config{
			ListenAddr:  *listen,
			DatabaseURL: *db,
			WALDir:      *walDir,
			Sandbox:     *sandbox,
			LogLevel:    *logLevel,
		}
	}

	if env := os.Getenv("DATABASE_URL"); env != "" {
		conf.DatabaseURL = env
	}
	if conf.ListenAddr == "" {
		conf.ListenAddr = ":8080"
	}
	if conf.LogLevel == "" {
		conf.LogLevel = "info"
	}
	if conf.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database connection string is required: set --db, database_url in config, or DATABASE_URL")
	}

	return conf, nil
}

func fromYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var conf Config
	if err := yaml.Unmarshal(f, &conf); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return conf, nil
}
