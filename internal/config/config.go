package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env          string `yaml:"env" env:"APP_ENV" env-default:"prod"`
	HTTPServer   `yaml:"http_server"`
	DBUser       string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	DBPassword   string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost       string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort       int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName       string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	ParseTime    bool   `yaml:"parse_time" env-default:"true"`
	ErrorLogPath string `yaml:"error_log_path" env:"ERROR_LOG_PATH" env-default:"errors.log"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`

	Invoice `yaml:"invoice"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
	// FrontendDir holds a built SPA; empty disables static serving.
	FrontendDir string `yaml:"frontend_dir" env:"FRONTEND_DIR"`
}

type Invoice struct {
	DefaultTaxRate string `yaml:"default_tax_rate" env:"DEFAULT_TAX_RATE" env-default:"10"`
}

// MustConfig reads the YAML file at CONFIG_PATH (./config/local.yaml when
// unset); environment variables override file values.
func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
