// Package config loads the TOML file that drives the oxyshader command.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Backend names accepted in the configuration file.
const (
	BackendGL   = "gl"
	BackendWGPU = "wgpu"
	BackendSoft = "soft"
)

// ErrUnknownBackend is returned when the backend is none of gl, wgpu or soft.
var ErrUnknownBackend = errors.New("config: unknown backend")

var (
	// TriangleVertexSource is the built-in vertex stage used when no vertex file is configured.
	//
	//go:embed shaders/triangle.vert
	TriangleVertexSource string

	// TriangleFragmentSource is the built-in fragment stage used when no fragment file is configured.
	//
	//go:embed shaders/triangle.frag
	TriangleFragmentSource string
)

// Config is the decoded configuration file.
type Config struct {
	Backend string       `toml:"backend"`
	Window  WindowConfig `toml:"window"`
	Shader  ShaderConfig `toml:"shader"`
	Log     LogConfig    `toml:"log"`
}

// WindowConfig holds the window settings.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// ShaderConfig names the source files of the program to build. Empty paths select the
// built-in triangle sources.
type ShaderConfig struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
	Watch    bool   `toml:"watch"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Backend: BackendGL,
		Window: WindowConfig{
			Title:  "Hello Triangle",
			Width:  640,
			Height: 480,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads and validates a configuration file. Unset values take their defaults, unknown
// keys are an error.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode decodes a configuration from r. See Load.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - Config: the configuration
//   - error: error if the document cannot be decoded or validated
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	c.Backend = strings.ToLower(common.Coalesce(c.Backend, def.Backend))
	c.Window.Title = common.Coalesce(c.Window.Title, def.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, def.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, def.Window.Height)
	c.Log.Level = common.Coalesce(c.Log.Level, def.Log.Level)
}

// Validate checks the backend name, the window size and the log level.
//
// Returns:
//   - error: the first invalid value found
func (c Config) Validate() error {
	switch c.Backend {
	case BackendGL, BackendWGPU, BackendSoft:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Shader.Watch && (c.Shader.Vertex == "" || c.Shader.Fragment == "") {
		return errors.New("config: shader.watch needs both shader.vertex and shader.fragment")
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
//
// Returns:
//   - slog.Level: the parsed level
//   - error: error if the level is unknown
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Sources returns the vertex and fragment source text: the configured files, or the built-in
// triangle for an empty path.
//
// Returns:
//   - string: the vertex source
//   - string: the fragment source
//   - error: error if a configured file cannot be read
func (s ShaderConfig) Sources() (string, string, error) {
	vertex, err := readOr(s.Vertex, TriangleVertexSource)
	if err != nil {
		return "", "", err
	}
	fragment, err := readOr(s.Fragment, TriangleFragmentSource)
	if err != nil {
		return "", "", err
	}
	return vertex, fragment, nil
}

func readOr(path, builtin string) (string, error) {
	if path == "" {
		return builtin, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("shader source %s does not exist: %w", path, err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read shader source %s: %w", path, err)
	}
	return string(b), nil
}
