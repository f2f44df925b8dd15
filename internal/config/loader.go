package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrParsing    ConfigErrorType = "PARSING_FAILED"
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	ErrInsecure   ConfigErrorType = "INSECURE"
)

// ConfigError is returned by Load.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DevSigningKey is used for device tokens outside production when no key is set.
const DevSigningKey = "local-dev-signing-key-change-in-production"

// Load reads a .env file if present, processes the environment and validates the result.
func Load() (*Config, error) {
	// A missing .env file is not an error, and it never overrides the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	if cfg.Auth.SigningKey == "" {
		if cfg.IsProduction() {
			return nil, &ConfigError{
				Type:    ErrInsecure,
				Message: "JWT_SIGNING_KEY is required in production",
			}
		}
		cfg.Auth.SigningKey = DevSigningKey
	}

	return &cfg, nil
}

// FieldErrors lists the failing fields of a validation ConfigError.
func FieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace())
	}
	return fields
}
