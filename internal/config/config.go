// Package config reads the kitchen services' settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by both Lambdas. Settings only one of
// them needs are checked by RequireKitchen and RequireTopic.
type Config struct {
	KitchenAPIURL     string        `validate:"omitempty,url"`
	KitchenAPITimeout time.Duration `validate:"gt=0"`
	FinishConcurrency int           `validate:"min=1"`
	TableName         string
	TopicArn          string
	JournalRetention  time.Duration `validate:"gte=0"`
	DynamoDBEndpoint  string        `validate:"omitempty,url"`
	LogLevel          slog.Level
}

type lookup func(key string) string

func getEnv(env lookup, key string, fallback string) string {
	if value := strings.TrimSpace(env(key)); value != "" {
		return value
	}
	return fallback
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse(os.Getenv)
}

func Parse(env lookup) (*Config, error) {
	timeout, err := time.ParseDuration(getEnv(env, "KITCHEN_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("KITCHEN_API_TIMEOUT: %w", err)
	}
	concurrency, err := strconv.Atoi(getEnv(env, "FINISH_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("FINISH_CONCURRENCY: %w", err)
	}
	retentionDays, err := strconv.Atoi(getEnv(env, "JOURNAL_RETENTION_DAYS", "90"))
	if err != nil {
		return nil, fmt.Errorf("JOURNAL_RETENTION_DAYS: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(env, "LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg := &Config{
		KitchenAPIURL:     getEnv(env, "KITCHEN_API_URL", ""),
		KitchenAPITimeout: timeout,
		FinishConcurrency: concurrency,
		TableName:         getEnv(env, "TABLE_NAME", ""),
		TopicArn:          getEnv(env, "TOPIC_ARN", ""),
		JournalRetention:  time.Duration(retentionDays) * 24 * time.Hour,
		DynamoDBEndpoint:  getEnv(env, "DYNAMODB_ENDPOINT", ""),
		LogLevel:          level,
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

func _require(value string, key string, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// RequireKitchen checks the settings of the kitchen API Lambda.
func (c *Config) RequireKitchen() error {
	return _require(c.KitchenAPIURL, "KITCHEN_API_URL", "required,url")
}

// RequireTopic checks the settings of the alerting Lambda.
func (c *Config) RequireTopic() error {
	return _require(c.TopicArn, "TOPIC_ARN", "required")
}

// AWS loads the default AWS configuration. With DYNAMODB_ENDPOINT set,
// DynamoDB calls go to that endpoint with static local credentials.
func (c *Config) AWS(ctx context.Context) (aws.Config, error) {
	if c.DynamoDBEndpoint == "" {
		return awsConfig.LoadDefaultConfig(ctx)
	}
	endpoint := c.DynamoDBEndpoint
	return awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == dynamodb.ServiceID {
					return aws.Endpoint{URL: endpoint}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			})),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
}
