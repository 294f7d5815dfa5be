package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type (
	Config struct {
		AppName      string
		Build        string
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		RollbarToken string
		Storage      string
		Server       ServerConfig
		Database     DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
}

func newViper(env string) *viper.Viper {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "Academia")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("storage", StoragePostgres)

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverReadTimeout", 5*time.Second)
	conf.SetDefault("serverWriteTimeout", 5*time.Second)
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", 5432)
	conf.SetDefault("dbName", "academia")
	conf.SetDefault("dbUser", "academia")
	conf.SetDefault("dbPassword", "academia")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "postgres")
	conf.SetDefault("dbDisableTLS", true)

	if env == "TEST" {
		conf.SetDefault("testMode", true)
		conf.SetDefault("storage", StorageMemory)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()
	return conf
}

// NewConfig reads the configuration for the current ENV.
// Every key can be overridden with an env var prefixed by the ENV, eg. PROD_DBHOST.
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v := newViper(env)

	return &Config{
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
		Storage:      v.GetString("storage"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Address:         v.GetString("serverAddress"),
			DebugHost:       v.GetString("serverDebugHost"),
			ReadTimeout:     v.GetDuration("serverReadTimeout"),
			WriteTimeout:    v.GetDuration("serverWriteTimeout"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
	}
}
