package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	Storage     string `yaml:"storage" env:"STORAGE" env-default:"memory"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	HTTPServer  `yaml:"http_server"`
	Workflow    `yaml:"workflow"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// Workflow holds every deadline of the confirmation protocol. All of
// them are wall-clock bounds, enforced by the sweeper and by lazy
// re-validation on reads.
type Workflow struct {
	Timezone                   string        `yaml:"timezone" env-default:"UTC"`
	TempHoldTTL                time.Duration `yaml:"temp_hold_ttl" env-default:"30m"`
	ConfirmationDeadline       time.Duration `yaml:"confirmation_deadline" env-default:"2h"`
	RescheduleResponseDeadline time.Duration `yaml:"reschedule_response_deadline" env-default:"24h"`
	CancelNoticePeriod         time.Duration `yaml:"cancel_notice_period" env-default:"24h"`
	SweepInterval              time.Duration `yaml:"sweep_interval" env-default:"1m"`
	LockTTL                    time.Duration `yaml:"lock_ttl" env-default:"10s"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
