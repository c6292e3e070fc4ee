package config

import (
	"log"
	"os"
	"strings"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

type Config struct {
	Mode Mode

	Port string

	// Calendar (Microsoft Graph)
	CalendarOwnerEmail string
	GraphTenantID      string
	GraphClientID      string
	GraphClientSecret  string

	// Search (Azure AI Search)
	SearchEndpoint string
	SearchAPIKey   string
	SearchIndex    string

	// Language model
	LLMBackend       string // "azure-openai", "vertex" or "mock"
	OpenAIEndpoint   string
	OpenAIAPIKey     string
	OpenAIDeployment string
	GCPProjectID     string
	GCPLocation      string
	VertexModelName  string

	// Email (Azure Communication Services)
	ACSConnectionString string
	ACSSender           string

	// Session persistence: "memory", "redis" or "firestore"
	SessionBackend string
	RedisAddr      string
	RedisPassword  string

	// Overrides the built-in assistant identity prompt when set.
	SystemPrompt string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("LACURA_MODE", "local")
	var mode Mode
	switch modeStr {
	case "cloud":
		mode = ModeCloud
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("PORT", "8080"),

		CalendarOwnerEmail: getEnv("CALENDAR_OWNER_EMAIL", "andrea@liveraltravel.com"),
		GraphTenantID:      getEnv("GRAPH_TENANT_ID", ""),
		GraphClientID:      getEnv("GRAPH_CLIENT_ID", ""),
		GraphClientSecret:  getEnv("GRAPH_CLIENT_SECRET", ""),

		SearchEndpoint: getEnv("AI_SEARCH_ENDPOINT", ""),
		SearchAPIKey:   getEnv("AI_SEARCH_API_KEY", ""),
		SearchIndex:    getEnv("AI_SEARCH_INDEX", "content"),

		LLMBackend:       strings.ToLower(getEnv("LLM_BACKEND", defaultLLMBackend(mode))),
		OpenAIEndpoint:   getEnv("OPENAI_ENDPOINT", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIDeployment: getEnv("OPENAI_DEPLOYMENT_NAME", "gpt-4"),
		GCPProjectID:     getEnv("GCP_PROJECT", ""),
		GCPLocation:      getEnv("GCP_LOCATION", "us-central1"),
		VertexModelName:  getEnv("VERTEX_MODEL_NAME", "gemini-2.5-flash"),

		ACSConnectionString: getEnv("ACS_CONNECTION_STRING", ""),
		ACSSender:           getEnv("ACS_SENDER", ""),

		SessionBackend: getEnv("SESSION_BACKEND", "memory"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		SystemPrompt: getEnv("AI_ASSISTANT_SYSTEM_PROMPT", ""),
	}

	// Minimal validation in cloud mode
	if cfg.Mode == ModeCloud {
		if cfg.LLMBackend == "azure-openai" && (cfg.OpenAIEndpoint == "" || cfg.OpenAIAPIKey == "") {
			log.Fatal("OPENAI_ENDPOINT and OPENAI_API_KEY must be set for the azure-openai backend")
		}
		if cfg.LLMBackend == "vertex" && cfg.GCPProjectID == "" {
			log.Fatal("GCP_PROJECT must be set for the vertex backend")
		}
	}

	return cfg
}

func defaultLLMBackend(mode Mode) string {
	if mode == ModeLocal {
		return "mock"
	}
	return "azure-openai"
}
