// Package config loads the settings of the corslab server and clients.
//
// Settings come from, in increasing order of precedence: the defaults
// returned by [Default], an optional YAML file, and CORSLAB_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Config holds everything that differs between a laptop demo and a hosted one.
type Config struct {
	// Addr is the listen address of the API server.
	Addr string `yaml:"addr" validate:"required,hostname_port"`
	// FrontendAddr is the listen address of the demo page; empty disables it.
	FrontendAddr string `yaml:"frontend_addr" validate:"omitempty,hostname_port"`
	// APIBaseURL is where clients reach the API server.
	APIBaseURL string `yaml:"api_base_url" validate:"required,http_url"`
	// AppOrigin is the origin of the demo page; the credentialed and
	// custom-header routes allow it and nothing else.
	AppOrigin string `yaml:"app_origin" validate:"required,http_url"`
	// RestrictedOrigins are the origins allowed by /api/restricted.
	RestrictedOrigins []string `yaml:"restricted_origins" validate:"required,min=1,dive,required"`

	Cookie CookieConfig `yaml:"cookie"`
	Log    LogConfig    `yaml:"log"`

	// Metrics enables the /metrics endpoint.
	Metrics bool `yaml:"metrics"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	// PreflightMaxAge is the max-age, in seconds, of preflight responses
	// on every route: 0 for the browser default, -1 to disable caching.
	PreflightMaxAge int `yaml:"preflight_max_age" validate:"gte=-1,lte=86400"`
}

// CookieConfig shapes the session cookie set by /api/login.
type CookieConfig struct {
	Name string `yaml:"name" validate:"required"`
	// Secure must stay on for SameSite=None cookies to be accepted.
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"same_site" validate:"oneof=none lax strict"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json logfmt"`
}

// Default returns the settings of the local demo: API on :3001,
// demo page on :5173.
func Default() Config {
	return Config{
		Addr:         ":3001",
		FrontendAddr: ":5173",
		APIBaseURL:   "http://localhost:3001",
		AppOrigin:    "http://localhost:5173",
		RestrictedOrigins: []string{
			"http://localhost:5173",
			"https://your-production-domain.com",
		},
		Cookie: CookieConfig{
			Name:     "sessionId",
			Secure:   true,
			SameSite: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics:         true,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load returns the default settings overridden by the YAML file at path,
// if path is non-empty, then by the environment. The result is normalized
// and validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Environ()); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

const envPrefix = "CORSLAB_"

// envSections are the nested settings; CORSLAB_COOKIE_SAME_SITE sets
// cookie.same_site.
var envSections = []string{"cookie", "log"}

// envSettings maps the CORSLAB_* variables of environ to the shape of the
// YAML file. Values stay strings; decoding converts them.
func envSettings(environ []string) map[string]any {
	settings := make(map[string]any)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(k, envPrefix))
		if section, field, ok := strings.Cut(key, "_"); ok && slices.Contains(envSections, section) {
			sub, _ := settings[section].(map[string]any)
			if sub == nil {
				sub = make(map[string]any)
				settings[section] = sub
			}
			sub[field] = v
			continue
		}
		settings[key] = v
	}
	return settings
}

// applyEnv overrides c with the CORSLAB_* variables of environ.
func (c *Config) applyEnv(environ []string) error {
	settings := envSettings(environ)
	if len(settings) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: c,
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return fmt.Errorf("config: %s* variables: %w", envPrefix, err)
	}
	return nil
}

// normalize trims what users commonly get wrong and fills in blanks.
func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.AppOrigin = strings.TrimRight(strings.TrimSpace(c.AppOrigin), "/")
	origins := c.RestrictedOrigins[:0]
	for _, o := range c.RestrictedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	c.RestrictedOrigins = origins
	if c.Cookie.Name == "" {
		c.Cookie.Name = "sessionId"
	}
	c.Cookie.SameSite = strings.ToLower(c.Cookie.SameSite)
	if c.Cookie.SameSite == "" {
		c.Cookie.SameSite = "none"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate reports every invalid setting in c.
// Cross-origin policies built from c are validated separately, when the
// server builds them.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	// Namespace is "Config.cookie.same_site"; drop the type name.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("config: %s is required", field)
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s], not %q", field, fe.Param(), fe.Value())
	default:
		if fe.Param() != "" {
			return fmt.Errorf("config: %s must satisfy %s=%s, not %v", field, fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("config: %s must be a valid %s, not %v", field, fe.Tag(), fe.Value())
	}
}
