package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "STAGEHAND"

// CookieFallbackEnv is the conventional variable holding the platform session cookie.
const CookieFallbackEnv = "ROBLOSECURITY"

// Config holds all tool settings.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Roblox  RobloxConfig  `mapstructure:"roblox"`
	State   StateConfig   `mapstructure:"state"`
	History HistoryConfig `mapstructure:"history"`
	Apply   ApplyConfig   `mapstructure:"apply"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"console"`
}

// RobloxConfig configures the platform client. The base URLs only change in tests.
type RobloxConfig struct {
	Cookie         string        `mapstructure:"cookie" default:""`
	APIBaseURL     string        `mapstructure:"api_base_url" default:"https://api.roblox.com"`
	DevelopBaseURL string        `mapstructure:"develop_base_url" default:"https://develop.roblox.com"`
	PublishBaseURL string        `mapstructure:"publish_base_url" default:"https://publish.roblox.com"`
	DataBaseURL    string        `mapstructure:"data_base_url" default:"https://data.roblox.com"`
	Timeout        time.Duration `mapstructure:"timeout" default:"60s"`
}

// StateConfig selects and configures the state backend.
type StateConfig struct {
	Backend       string `mapstructure:"backend" default:"local"`
	Dir           string `mapstructure:"dir" default:".stagehand"`
	Bucket        string `mapstructure:"bucket" default:""`
	Key           string `mapstructure:"key" default:"stagehand/state.yml"`
	Region        string `mapstructure:"region" default:""`
	DynamoDBTable string `mapstructure:"dynamodb_table" default:""`
	Encrypt       bool   `mapstructure:"encrypt" default:"false"`
	Profile       string `mapstructure:"profile" default:""`
	Endpoint      string `mapstructure:"endpoint" default:""`
	AccessKey     string `mapstructure:"access_key" default:""`
	SecretKey     string `mapstructure:"secret_key" default:""`
	UseSSL        bool   `mapstructure:"use_ssl" default:"true"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path" default:".stagehand/history.db"`
}

type ApplyConfig struct {
	Parallelism int `mapstructure:"parallelism" default:"10"`
}

// LoadConfig loads settings from the environment and an optional .env file in path.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Roblox.Cookie == "" {
		config.Roblox.Cookie = os.Getenv(CookieFallbackEnv)
	}
	return &config, nil
}

// bindValues registers every mapstructure key with its default so that
// AutomaticEnv can find it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
