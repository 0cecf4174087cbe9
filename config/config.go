// Ininicializing common application configuration
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Enhancer EnhancerConfig `mapstructure:"enhancer"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Mode         string `mapstructure:"mode"`
}

// EnhancerConfig keeps the empirically chosen engine/encoder constants
// overridable without a rebuild.
type EnhancerConfig struct {
	Engine             string `mapstructure:"engine"` // auto | full | reduced | simulation
	CascadeDir         string `mapstructure:"cascade_dir"`
	WebDir             string `mapstructure:"web_dir"`
	JPEGQuality        int    `mapstructure:"jpeg_quality"`
	JPEGQualityFast    int    `mapstructure:"jpeg_quality_fast"`
	ReducedQuality     int    `mapstructure:"reduced_quality"`
	ReducedQualityFast int    `mapstructure:"reduced_quality_fast"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type StorageConfig struct {
	BasePath string `mapstructure:"base_path"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
