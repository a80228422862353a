package config_test

import (
	"testing"
	"time"

	"github.com/spacesedan/newscard/config"
	"github.com/stretchr/testify/require"
)

func validSettings() config.Settings {
	return config.Settings{
		NewsAPIKey:     "news",
		LLMProvider:    config.ProviderOpenAI,
		OpenAIKey:      "sk",
		ImageProvider:  config.ProviderGemini,
		GeminiKey:      "g",
		FontRegularURL: "https://cdn.example.com/regular.ttf",
		FontBoldURL:    "https://cdn.example.com/bold.ttf",
		FrameURL:       "https://cdn.example.com/frame.png",
		LogoURL:        "https://cdn.example.com/logo.png",
		UploadURL:      "https://upload.example.com",
		UploadPreset:   "preset",
		WebhookURL:     "https://hooks.example.com",
		RunInterval:    time.Hour,
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("NEWSDATA_ENDPOINT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("IMAGE_PROVIDER", "")
	t.Setenv("RUN_INTERVAL", "")
	t.Setenv("RUN_ON_START", "")

	s := config.FromEnv()
	require.Equal(t, "https://newsdata.io/api/1/latest", s.NewsEndpoint)
	require.Equal(t, config.ProviderOpenAI, s.LLMProvider)
	require.Equal(t, config.ProviderGemini, s.ImageProvider)
	require.Equal(t, 6*time.Hour, s.RunInterval)
	require.True(t, s.RunOnStart)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("RUN_INTERVAL", "30m")
	t.Setenv("RUN_ON_START", "false")
	t.Setenv("VALKEY_TLS", "true")

	s := config.FromEnv()
	require.Equal(t, config.ProviderGemini, s.LLMProvider)
	require.Equal(t, 30*time.Minute, s.RunInterval)
	require.False(t, s.RunOnStart)
	require.True(t, s.ValkeyTLS)
}

func TestValidate_Success(t *testing.T) {
	require.NoError(t, validSettings().Validate())
}

func TestValidate_MissingKeys(t *testing.T) {
	s := validSettings()
	s.NewsAPIKey = ""
	s.WebhookURL = ""

	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "NEWSDATA_API_KEY is required")
	require.Contains(t, err.Error(), "WEBHOOK_URL is required")
}

func TestValidate_ProviderKeys(t *testing.T) {
	s := validSettings()
	s.ImageProvider = config.ProviderOpenAI
	s.GeminiKey = ""
	require.NoError(t, s.Validate())

	s.OpenAIKey = ""
	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENAI_API_KEY is required")
}

func TestValidate_UnknownProvider(t *testing.T) {
	s := validSettings()
	s.LLMProvider = "claude"
	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "LLM_PROVIDER")
}

func TestValidate_PostgresLedgerNeedsURL(t *testing.T) {
	s := validSettings()
	s.LedgerBackend = config.LedgerPostgres
	err := s.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestValidate_ShortInterval(t *testing.T) {
	s := validSettings()
	s.RunInterval = 10 * time.Second
	require.ErrorContains(t, s.Validate(), "RUN_INTERVAL")
}
