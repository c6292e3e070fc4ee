package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lacura/lacura-api/internal/adapters/calendar"
	"github.com/lacura/lacura-api/internal/adapters/email"
	httpadapter "github.com/lacura/lacura-api/internal/adapters/http"
	"github.com/lacura/lacura-api/internal/adapters/llm"
	"github.com/lacura/lacura-api/internal/adapters/search"
	firestorestore "github.com/lacura/lacura-api/internal/adapters/storage/firestore"
	memstore "github.com/lacura/lacura-api/internal/adapters/storage/memory"
	redisstore "github.com/lacura/lacura-api/internal/adapters/storage/redis"
	"github.com/lacura/lacura-api/internal/app/booking"
	"github.com/lacura/lacura-api/internal/app/chat"
	"github.com/lacura/lacura-api/internal/app/knowledge"
	"github.com/lacura/lacura-api/internal/config"
	"github.com/lacura/lacura-api/internal/domain"
)

const sessionRetention = 24 * time.Hour

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Language model backend
	var (
		llmClient domain.LLMClient
		err       error
	)
	switch cfg.LLMBackend {
	case "azure-openai":
		log.Printf("[LLM] Using Azure OpenAI (deployment=%s)", cfg.OpenAIDeployment)
		llmClient, err = llm.NewAzureClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIDeployment)
		if err != nil {
			log.Fatalf("error initializing Azure OpenAI client: %v", err)
		}
	case "vertex":
		log.Printf("[LLM] Using Vertex (project=%s model=%s)", cfg.GCPProjectID, cfg.VertexModelName)
		llmClient, err = llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.VertexModelName)
		if err != nil {
			log.Fatalf("error initializing Vertex client: %v", err)
		}
	default:
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	}

	// Session persistence: Firestore, Redis or Memory
	var sessionStore domain.SessionStore
	switch cfg.SessionBackend {
	case "firestore":
		if cfg.GCPProjectID == "" {
			log.Fatal("GCP_PROJECT is required for the firestore session backend")
		}
		log.Printf("[STORE] Using Firestore sessions (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewSessionStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore session store: %v", err)
		}
		sessionStore = fsStore
		go cleanupLoop(ctx, fsStore)

	case "redis":
		log.Printf("[STORE] Using Redis sessions (addr=%s)", cfg.RedisAddr)
		rStore := redisstore.NewSessionStore(cfg.RedisAddr, cfg.RedisPassword)
		if err := rStore.Ping(ctx); err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		sessionStore = rStore

	default:
		log.Println("[STORE] Using in-memory sessions")
		sessionStore = memstore.NewSessionStore()
	}

	// Calendar gateway (Microsoft Graph). Optional in local mode so the
	// chat endpoint works without credentials; without it the booking
	// endpoints report the calendar as unconfigured.
	var calendarClient domain.CalendarClient
	if cfg.GraphTenantID != "" || cfg.Mode == config.ModeCloud {
		gc, err := calendar.NewGraphClient(
			cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret, cfg.CalendarOwnerEmail,
		)
		if err != nil {
			log.Fatalf("error initializing calendar client: %v", err)
		}
		calendarClient = gc
	} else {
		log.Println("[CALENDAR] No Graph credentials configured, bookings disabled")
	}

	// Search gateway is optional: without it the chat simply answers
	// without retrieval context and /ingest returns errors.
	var searchClient domain.SearchClient
	if cfg.SearchEndpoint != "" {
		searchClient, err = search.NewClient(cfg.SearchEndpoint, cfg.SearchAPIKey, cfg.SearchIndex)
		if err != nil {
			log.Fatalf("error initializing search client: %v", err)
		}
	} else {
		log.Println("[SEARCH] No endpoint configured, retrieval disabled")
	}

	// Email gateway is optional too.
	var emailClient domain.EmailClient
	var defaultSender string
	if cfg.ACSConnectionString != "" {
		acs, err := email.NewACSClient(cfg.ACSConnectionString, cfg.ACSSender)
		if err != nil {
			log.Fatalf("error initializing email client: %v", err)
		}
		emailClient = acs
		defaultSender = acs.DefaultSender()
	} else {
		log.Println("[EMAIL] No connection string configured, /email/send disabled")
	}

	// Services
	chatSvc := chat.NewService(llmClient, calendarClient, searchClient, sessionStore, chat.Config{
		SystemPrompt: cfg.SystemPrompt,
	})
	bookingSvc := booking.NewService(calendarClient)
	knowledgeSvc := knowledge.NewService(searchClient)

	// HTTP server
	handler := httpadapter.NewServer(chatSvc, bookingSvc, knowledgeSvc, httpadapter.ServerConfig{
		Email:         emailClient,
		DefaultSender: defaultSender,
		Diagnostic:    cfg.Mode == config.ModeLocal,
	})
	handler = httpadapter.ChainMiddlewares(handler, httpadapter.Middlewares()...)

	port := ":" + cfg.Port
	log.Println("La Cura API listening on port:", port)
	if err := http.ListenAndServe(port, handler); err != nil {
		log.Fatal(err)
	}
}

// cleanupLoop expires stale Firestore sessions. Redis handles this with a
// TTL; Firestore needs the sweep.
func cleanupLoop(ctx context.Context, store *firestorestore.SessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		n, err := store.CleanupExpired(ctx, time.Now().Add(-sessionRetention))
		if err != nil {
			log.Printf("session cleanup failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("session cleanup removed %d sessions", n)
		}
	}
}
