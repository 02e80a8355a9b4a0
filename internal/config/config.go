package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret     string `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	TokenTTLHours int    `envconfig:"TOKEN_TTL_HOURS" default:"168"`

	JiraURL      string `envconfig:"JIRA_URL"`
	JiraEmail    string `envconfig:"JIRA_EMAIL"`
	JiraAPIToken string `envconfig:"JIRA_API_TOKEN"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"safe2go-attachments"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Bootstrap: create an initial administrator account on startup
	InitAdminEmail    string `envconfig:"INIT_ADMIN_EMAIL"`
	InitAdminPassword string `envconfig:"INIT_ADMIN_PASSWORD"`
	InitAdminName     string `envconfig:"INIT_ADMIN_NAME" default:"Administrador"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SAFE2GO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasJira() bool {
	return c.JiraURL != "" && c.JiraEmail != "" && c.JiraAPIToken != ""
}

func (c *Config) HasInitAdmin() bool {
	return c.InitAdminEmail != "" && c.InitAdminPassword != ""
}
