package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photobook/internal/constants"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Analysis AnalysisConfig
	Composer ComposerConfig
	Editor   EditorConfig
	AI       AIConfig
	Database DatabaseConfig
	Web      WebConfig
	Defaults DefaultsConfig
}

type AnalysisConfig struct {
	MaxEdge   int // long edge (px) images are downscaled to before scoring
	ChunkSize int // photos analyzed between yields
	Workers   int // parallel analyses inside one chunk
}

type ComposerConfig struct {
	MaxPages int
	Seed     uint64 // layout tie-break seed, 0 means time based
}

type EditorConfig struct {
	HistoryCapacity int
	SnapThreshold   float64
}

type AIConfig struct {
	Provider      string // "openai", "gemini", "ollama", "llamacpp" or empty for heuristic-only mode
	Timeout       time.Duration
	SampleSize    int
	OpenAIToken   string
	GeminiKey     string
	OllamaURL     string // defaults to http://localhost:11434
	OllamaModel   string // defaults to llama3.2-vision:11b
	LlamaCppURL   string // defaults to http://localhost:8080
	LlamaCppModel string // defaults to llava
}

type DatabaseConfig struct {
	URL          string // postgres://..., mysql://..., sqlite://path or a plain file path
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Host           string
	Port           int
	MediaDir       string   // where uploaded photos are stored and served from
	AllowedOrigins []string // CORS origins besides localhost
}

// DefaultsConfig holds the embedded defaults.yaml content.
type DefaultsConfig struct {
	Backgrounds map[string]string       `yaml:"backgrounds"`
	Typography  map[string]TextStyle    `yaml:"typography"`
	Models      map[string]ModelPricing `yaml:"models"`
}

type TextStyle struct {
	FontFamily string  `yaml:"font_family"`
	FontSize   float64 `yaml:"font_size"`
	Color      string  `yaml:"color"`
	Align      string  `yaml:"align"`
	Weight     string  `yaml:"weight"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a positive float, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads a Go duration string such as "30s", falling back to defaultVal.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated list, skipping empty entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var defaults DefaultsConfig
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	var seed uint64
	if s := os.Getenv("LAYOUT_SEED"); s != "" {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			seed = n
		}
	}

	return &Config{
		Analysis: AnalysisConfig{
			MaxEdge:   envInt("ANALYSIS_MAX_EDGE", constants.AnalysisMaxEdge),
			ChunkSize: envInt("ANALYSIS_CHUNK_SIZE", constants.AnalysisChunkSize),
			Workers:   envInt("ANALYSIS_WORKERS", constants.DefaultConcurrency),
		},
		Composer: ComposerConfig{
			MaxPages: envInt("MAX_PAGES", constants.MaxPages),
			Seed:     seed,
		},
		Editor: EditorConfig{
			HistoryCapacity: envInt("HISTORY_CAPACITY", constants.HistoryCapacity),
			SnapThreshold:   envFloat("SNAP_THRESHOLD", constants.SnapThreshold),
		},
		AI: AIConfig{
			Provider:      os.Getenv("AI_PROVIDER"),
			Timeout:       envDuration("AI_TIMEOUT", 60*time.Second),
			SampleSize:    envInt("AI_SAMPLE_SIZE", constants.DefaultSampleSize),
			OpenAIToken:   os.Getenv("OPENAI_TOKEN"),
			GeminiKey:     os.Getenv("GEMINI_API_KEY"),
			OllamaURL:     os.Getenv("OLLAMA_URL"),
			OllamaModel:   os.Getenv("OLLAMA_MODEL"),
			LlamaCppURL:   os.Getenv("LLAMACPP_URL"),
			LlamaCppModel: os.Getenv("LLAMACPP_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          envString("DATABASE_URL", "sqlite://photobook.db"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host:     envString("WEB_HOST", "0.0.0.0"),
			Port:     envInt("WEB_PORT", 8080),
			MediaDir: envString("MEDIA_DIR", "media"),

			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Defaults: defaults,
	}
}

// GetModelPricing returns pricing for a specific model, zero pricing when unknown
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Defaults.Models[modelName]; ok {
		return pricing
	}
	return ModelPricing{}
}

// Background returns the neutral background for a page role ("cover", "opening", "content", "closing").
func (c *Config) Background(role string) string {
	if bg, ok := c.Defaults.Backgrounds[role]; ok && bg != "" {
		return bg
	}
	return "#FFFFFF"
}
