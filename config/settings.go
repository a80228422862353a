package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultNewsEndpoint  = "https://newsdata.io/api/1/latest"
	defaultCountry       = "bd"
	defaultLanguage      = "en"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiText    = "gemini-2.0-flash"
	defaultGeminiImage   = "imagen-3.0-generate-002"
	defaultWebhookHeader = "X-Webhook-Secret"
	defaultPostsTopic    = "newscard-posts"
	defaultLedgerTable   = "PublishedPosts"
	defaultAWSRegion     = "us-west-2"
	defaultHTTPAddr      = ":8080"
	defaultRunInterval   = 6 * time.Hour
	defaultBrandName     = "newscard"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	LedgerDynamoDB = "dynamodb"
	LedgerPostgres = "postgres"
)

// Settings is the full runtime configuration, read once at startup.
type Settings struct {
	Env      string
	LogLevel string
	LogSink  string

	NewsAPIKey   string
	NewsEndpoint string
	Country      string
	Language     string

	LLMProvider   string
	OpenAIKey     string
	OpenAIModel   string
	GeminiKey     string
	GeminiText    string
	ImageProvider string
	GeminiImage   string
	RelevanceRule string

	FontRegularURL string
	FontBoldURL    string
	FrameURL       string
	LogoURL        string
	BrandName      string

	UploadURL     string
	UploadAPIKey  string
	UploadPreset  string
	WebhookURL    string
	WebhookHeader string
	WebhookToken  string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	KafkaBroker    string
	PostsTopic     string
	LedgerBackend  string
	LedgerTable    string
	AWSRegion      string
	AWSEndpoint    string
	DatabaseURL    string

	HTTPAddr     string
	TriggerToken string
	RunInterval  time.Duration
	RunOnStart   bool
}

// FromEnv builds Settings from the process environment, applying defaults for
// everything optional.
func FromEnv() Settings {
	return Settings{
		Env:      getenv("APP_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		LogSink:  os.Getenv("LOG_SINK_URL"),

		NewsAPIKey:   os.Getenv("NEWSDATA_API_KEY"),
		NewsEndpoint: getenv("NEWSDATA_ENDPOINT", defaultNewsEndpoint),
		Country:      getenv("NEWS_COUNTRY", defaultCountry),
		Language:     getenv("NEWS_LANGUAGE", defaultLanguage),

		LLMProvider:   strings.ToLower(getenv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenv("OPENAI_MODEL", defaultOpenAIModel),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiText:    getenv("GEMINI_TEXT_MODEL", defaultGeminiText),
		ImageProvider: strings.ToLower(getenv("IMAGE_PROVIDER", ProviderGemini)),
		GeminiImage:   getenv("GEMINI_IMAGE_MODEL", defaultGeminiImage),
		RelevanceRule: os.Getenv("RELEVANCE_RULE"),

		FontRegularURL: os.Getenv("FONT_REGULAR_URL"),
		FontBoldURL:    os.Getenv("FONT_BOLD_URL"),
		FrameURL:       os.Getenv("FRAME_URL"),
		LogoURL:        os.Getenv("LOGO_URL"),
		BrandName:      getenv("BRAND_NAME", defaultBrandName),

		UploadURL:     os.Getenv("UPLOAD_URL"),
		UploadAPIKey:  os.Getenv("UPLOAD_API_KEY"),
		UploadPreset:  os.Getenv("UPLOAD_PRESET"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		WebhookHeader: getenv("WEBHOOK_AUTH_HEADER", defaultWebhookHeader),
		WebhookToken:  os.Getenv("WEBHOOK_AUTH_TOKEN"),

		ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:      os.Getenv("VALKEY_TLS") == "true",
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		PostsTopic:     getenv("KAFKA_POSTS_TOPIC", defaultPostsTopic),
		LedgerBackend:  strings.ToLower(os.Getenv("LEDGER_BACKEND")),
		LedgerTable:    getenv("LEDGER_TABLE", defaultLedgerTable),
		AWSRegion:      getenv("AWS_REGION", defaultAWSRegion),
		AWSEndpoint:    os.Getenv("AWS_ENDPOINT"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		HTTPAddr:     getenv("HTTP_ADDR", defaultHTTPAddr),
		TriggerToken: os.Getenv("TRIGGER_TOKEN"),
		RunInterval:  getDuration("RUN_INTERVAL", defaultRunInterval),
		RunOnStart:   getBool("RUN_ON_START", true),
	}
}

// Validate reports every missing or contradictory setting at once.
func (s Settings) Validate() error {
	var errs []error
	require := func(value, key string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	require(s.NewsAPIKey, "NEWSDATA_API_KEY")
	require(s.FontRegularURL, "FONT_REGULAR_URL")
	require(s.FontBoldURL, "FONT_BOLD_URL")
	require(s.FrameURL, "FRAME_URL")
	require(s.LogoURL, "LOGO_URL")
	require(s.UploadURL, "UPLOAD_URL")
	require(s.UploadPreset, "UPLOAD_PRESET")
	require(s.WebhookURL, "WEBHOOK_URL")

	needsOpenAI := s.LLMProvider == ProviderOpenAI || s.ImageProvider == ProviderOpenAI
	needsGemini := s.LLMProvider == ProviderGemini || s.ImageProvider == ProviderGemini
	if s.LLMProvider != ProviderOpenAI && s.LLMProvider != ProviderGemini {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, s.LLMProvider))
	}
	if s.ImageProvider != ProviderOpenAI && s.ImageProvider != ProviderGemini {
		errs = append(errs, fmt.Errorf("IMAGE_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, s.ImageProvider))
	}
	if needsOpenAI {
		require(s.OpenAIKey, "OPENAI_API_KEY")
	}
	if needsGemini {
		require(s.GeminiKey, "GEMINI_API_KEY")
	}

	switch s.LedgerBackend {
	case "", LedgerDynamoDB:
	case LedgerPostgres:
		require(s.DatabaseURL, "DATABASE_URL")
	default:
		errs = append(errs, fmt.Errorf("LEDGER_BACKEND must be empty, %q or %q, got %q", LedgerDynamoDB, LedgerPostgres, s.LedgerBackend))
	}

	if s.RunInterval < time.Minute {
		errs = append(errs, errors.New("RUN_INTERVAL must be at least 1m"))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
