// Package config loads and validates the interpreter's configuration
// directory.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName  = "config.yaml"
	SessionLogsDirName = "session_logs"
	HostKeyName        = "host_key"
	AppLogName         = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	// Prompt is written before each read, with no trailing newline.
	Prompt string `json:"prompt" validate:"required"`

	// MaxLineBytes caps the length of one input line.
	MaxLineBytes int `json:"max_line_bytes" validate:"gte=16"`

	// MaxArgs caps the token count of one input line.
	MaxArgs int `json:"max_args" validate:"gte=1"`

	SSH SSH `json:"ssh"`
}

// SSH configures the served interpreter.
type SSH struct {
	Port int `json:"port" validate:"gte=0,lte=65535"`

	// AllowAnyPassword accepts every login. Passwords is consulted
	// otherwise.
	AllowAnyPassword bool     `json:"allow_any_password"`
	Passwords        []string `json:"passwords" validate:"unique"`

	// SessionsPerMinute throttles accepted connections. Zero disables
	// the throttle.
	SessionsPerMinute float64 `json:"sessions_per_minute" validate:"gte=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// CreateSessionLog creates a session recording with the given name.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	if err := c.fs().MkdirAll(SessionLogsDirName, 0700); err != nil {
		return nil, err
	}
	return c.fs().Create(filepath.Join(SessionLogsDirName, name))
}

// HostKeyPem returns the bytes of the SSH host key.
func (c *Configuration) HostKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), HostKeyName)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadAppLog opens the application log for reading.
func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
