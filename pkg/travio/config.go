package travio

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the production API origin.
const DefaultBaseURL = "https://api.travio.it/"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API origin every endpoint is appended to
	BaseURL string `env:"TRAVIO_BASE_URL" envDefault:"https://api.travio.it/" validate:"omitempty,http_url"`

	// AuthID and AuthKey form the Credential exchanged for a bearer token
	AuthID  int64  `env:"TRAVIO_AUTH_ID" validate:"gte=0"`
	AuthKey string `env:"TRAVIO_AUTH_KEY" validate:"required_with=AuthID"`

	// ShareSessionCart reuses one cart id across calls within a session
	ShareSessionCart bool `env:"TRAVIO_SHARE_SESSION_CART" envDefault:"false"`

	// Timeout bounds a whole request, ConnectTimeout the dial and TLS handshake
	Timeout        time.Duration `env:"TRAVIO_TIMEOUT" envDefault:"30s" validate:"gte=0"`
	ConnectTimeout time.Duration `env:"TRAVIO_CONNECT_TIMEOUT" envDefault:"10s" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        30 * time.Second,
		ConnectTimeout: 10 * time.Second,
	}
}

// Credential is the static API identity exchanged for a token on POST auth.
type Credential struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

// Credential returns the API identity configured in c.
func (c Config) Credential() Credential {
	return Credential{ID: c.AuthID, Key: c.AuthKey}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the field constraints of c. Credentials are optional: a
// client driven only by SetAuthToken never exchanges them.
func (c Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return nil
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, ", "))
}

// RequireCredential reports ErrInvalidConfig when no credential is configured.
func (c Config) RequireCredential() error {
	if c.AuthID == 0 || c.AuthKey == "" {
		return fmt.Errorf("%w: TRAVIO_AUTH_ID and TRAVIO_AUTH_KEY are required", ErrInvalidConfig)
	}
	return nil
}
