package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported AI providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the full application configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	AI      AIConfig      `yaml:"ai,omitempty"`
	MJML    MJMLConfig    `yaml:"mjml,omitempty"`
	Assets  AssetsConfig  `yaml:"assets,omitempty"`
	Render  RenderConfig  `yaml:"render,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// Validate validates every configuration section.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if err := c.MJML.Validate(); err != nil {
		return err
	}
	if err := c.Assets.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AIConfig selects and configures the model providers.
type AIConfig struct {
	Provider  string          `yaml:"provider,omitempty"` // "openai" or "anthropic"
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderOpenAI, ProviderAnthropic)),
	)
}

// OpenAIConfig configures the OpenAI-compatible provider. The vision model
// serves both the critique pipeline and asset descriptor generation.
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Model       string `yaml:"model,omitempty"`
	VisionModel string `yaml:"vision_model,omitempty"`
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// MJMLConfig configures the MJML render API endpoint.
type MJMLConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	AppID   string `yaml:"app_id,omitempty"`
	Secret  string `yaml:"secret,omitempty"`
}

// Validate validates the MJML configuration.
func (c *MJMLConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// AssetsConfig holds the two parallel asset directories: raw uploads and
// their JSON descriptor sidecars.
type AssetsConfig struct {
	UploadsDir string `yaml:"uploads_dir,omitempty"`
	InfoDir    string `yaml:"info_dir,omitempty"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.UploadsDir, validation.Required),
		validation.Field(&c.InfoDir, validation.Required),
	)
}

// RenderConfig configures the raster pipeline.
type RenderConfig struct {
	// BaseOrigin is injected as a <base href> so root-relative asset paths
	// resolve outside the web server's path context.
	BaseOrigin string `yaml:"base_origin,omitempty"`
	// ViewportWidth defaults to 600, the standard email-safe width.
	ViewportWidth  int `yaml:"viewport_width,omitempty"`
	ViewportHeight int `yaml:"viewport_height,omitempty"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseOrigin, validation.Required),
		validation.Field(&c.ViewportWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.ViewportHeight, validation.Required, validation.Min(1)),
	)
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

var (
	loadOnce  sync.Once
	loaded    *Config
	loadErr   error
	envLoaded sync.Once
)

// Load reads the config from the default locations, caching the result.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = LoadFromPath(defaultPath())
	})
	return loaded, loadErr
}

// LoadFromPath reads a YAML config file, applies defaults and environment
// overrides, and validates the result. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnv(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Port: 3000},
		AI: AIConfig{
			Provider: ProviderAnthropic,
			OpenAI: OpenAIConfig{
				Model:       "gpt-4o-mini",
				VisionModel: "gpt-4o-mini",
			},
			Anthropic: AnthropicConfig{
				Model: "claude-sonnet-4-20250514",
			},
		},
		MJML: MJMLConfig{
			BaseURL: "https://api.mjml.io/v1",
		},
		Assets: AssetsConfig{
			UploadsDir: "public/uploads",
			InfoDir:    "public/image_info",
		},
		Render: RenderConfig{
			BaseOrigin:     "http://localhost:3000/",
			ViewportWidth:  600,
			ViewportHeight: 2000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.HTTP.Port == 0 {
		c.HTTP.Port = def.HTTP.Port
	}
	if c.AI.Provider == "" {
		c.AI.Provider = def.AI.Provider
	}
	if c.AI.OpenAI.Model == "" {
		c.AI.OpenAI.Model = def.AI.OpenAI.Model
	}
	if c.AI.OpenAI.VisionModel == "" {
		c.AI.OpenAI.VisionModel = def.AI.OpenAI.VisionModel
	}
	if c.AI.Anthropic.Model == "" {
		c.AI.Anthropic.Model = def.AI.Anthropic.Model
	}
	if c.MJML.BaseURL == "" {
		c.MJML.BaseURL = def.MJML.BaseURL
	}
	if c.Assets.UploadsDir == "" {
		c.Assets.UploadsDir = def.Assets.UploadsDir
	}
	if c.Assets.InfoDir == "" {
		c.Assets.InfoDir = def.Assets.InfoDir
	}
	if c.Render.BaseOrigin == "" {
		c.Render.BaseOrigin = fmt.Sprintf("http://localhost:%d/", c.HTTP.Port)
	}
	if c.Render.ViewportWidth == 0 {
		c.Render.ViewportWidth = def.Render.ViewportWidth
	}
	if c.Render.ViewportHeight == 0 {
		c.Render.ViewportHeight = def.Render.ViewportHeight
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// applyEnv overlays environment variables on top of file values. A .env file
// in the working directory is honored if present.
func applyEnv(cfg *Config) {
	envLoaded.Do(func() {
		_ = godotenv.Load()
	})
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.AI.OpenAI.BaseURL = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AI.Anthropic.APIKey = v
	}
	if v := os.Getenv("MJML_APP_ID"); v != "" {
		cfg.MJML.AppID = v
	}
	if v := os.Getenv("MJML_SECRET"); v != "" {
		cfg.MJML.Secret = v
	}
}

func defaultPath() string {
	if env := os.Getenv("DRAFTDECK_CONFIG"); env != "" {
		return env
	}
	return filepath.Join(".", ".draftdeck.yaml")
}
