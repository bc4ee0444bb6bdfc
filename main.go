package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/joaovasc10/bora/app"
	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/mapsurface"
	"github.com/joaovasc10/bora/services"
	"github.com/joaovasc10/bora/storage"
	"github.com/joaovasc10/bora/types"
)

type logNotifier struct{}

func (logNotifier) Success(msg string) { log.Printf("✓ %s", msg) }
func (logNotifier) Error(msg string)   { log.Printf("✗ %s", msg) }
func (logNotifier) Info(msg string)    { log.Printf("ℹ %s", msg) }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	baseUrl := os.Getenv(helpers.ENV_API_BASE_URL)
	if baseUrl == "" {
		log.Fatalf("%s must be set", helpers.ENV_API_BASE_URL)
	}
	citySlug := os.Getenv(helpers.ENV_CITY_SLUG)
	if citySlug == "" {
		citySlug = "porto-alegre"
	}
	dbPath := os.Getenv(helpers.ENV_DB_PATH)
	if dbPath == "" {
		dbPath = "bora.db"
	}

	store, err := storage.NewSessionStore(dbPath)
	if err != nil {
		log.Fatalf("Error opening session store: %v", err)
	}
	defer store.Close()

	session := services.NewSessionService(baseUrl, store)
	events := services.NewEventsService(baseUrl, citySlug, session)

	ctx := context.Background()
	bus := app.NewBus()
	defer bus.Close()

	session.OnAuthChange = func(loggedIn bool, user *types.User) {
		payload := app.AuthChangedPayload{}
		topic := app.TopicAuthLogout
		if loggedIn {
			topic = app.TopicAuthLogin
			if user != nil {
				payload.Email = user.Email
			}
		}
		if err := bus.Publish(topic, payload); err != nil {
			log.Printf("Error publishing %s: %v", topic, err)
		}
	}

	surface := mapsurface.NewLogSurface()
	core := app.New(types.NewFilterState(), events, session, surface, bus, logNotifier{})
	if err := core.Start(ctx); err != nil {
		log.Fatalf("Error starting app: %v", err)
	}

	features := core.LoadAndRenderEvents(ctx)
	log.Printf("Loaded %d events for %s", len(features), citySlug)
}
