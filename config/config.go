package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds the configuration settings for the application.
// It includes the environment type, the database configuration,
// the HTTP listen port and the bulk-upload limits.
type Config struct {
	Env      string         `yaml:"env"`      // Env is the current environment: local, dev, prod.
	Database PostgresConfig `yaml:"postgres"` // Database holds the postgres database configuration
	HTTPPort int            `yaml:"http_port"`
	Upload   UploadConfig   `yaml:"upload"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// UploadConfig bounds the bulk-upload endpoint.
type UploadConfig struct {
	MaxSizeMB int64  `yaml:"max_size_mb"` // MaxSizeMB caps the accepted spreadsheet size.
	TmpDir    string `yaml:"tmp_dir"`     // TmpDir is where transient uploads are written.
}

// MustLoad loads the configuration from a YAML file and returns a Config struct.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		panic("config error: " + err.Error())
	}

	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("http_port", 8080)
	viper.SetDefault("upload.max_size_mb", 10)
	viper.SetDefault("upload.tmp_dir", os.TempDir())

	return &Config{
		Env:      viper.GetString("env"),
		HTTPPort: viper.GetInt("http_port"),
		Database: PostgresConfig{
			Host:     viper.GetString("postgres.host"),
			Port:     viper.GetString("postgres.port"),
			User:     viper.GetString("postgres.user"),
			Password: viper.GetString("postgres.password"),
			Name:     viper.GetString("postgres.db_name"),
		},
		Upload: UploadConfig{
			MaxSizeMB: viper.GetInt64("upload.max_size_mb"),
			TmpDir:    viper.GetString("upload.tmp_dir"),
		},
	}
}
