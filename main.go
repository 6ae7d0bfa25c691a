package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	medicalx "github.com/alessalabs/concierge/agent/agents/medical"
	salesx "github.com/alessalabs/concierge/agent/agents/sales"
	cachex "github.com/alessalabs/concierge/agent/cache"
	contractx "github.com/alessalabs/concierge/agent/contract"
	llmx "github.com/alessalabs/concierge/agent/llm"
	"github.com/alessalabs/concierge/agent/orchestrator"
	promptx "github.com/alessalabs/concierge/agent/prompt"
	routerx "github.com/alessalabs/concierge/agent/router"
	sessionx "github.com/alessalabs/concierge/agent/session"
	toolx "github.com/alessalabs/concierge/agent/tool"
	catalogx "github.com/alessalabs/concierge/pkg/catalog"
	configx "github.com/alessalabs/concierge/pkg/config"
	"github.com/alessalabs/concierge/pkg/httpserver"
	_ "github.com/alessalabs/concierge/pkg/logger/autoload"
	openaix "github.com/alessalabs/concierge/pkg/openai"
)

func main() {
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		panic(err)
	}

	cacheCfg := configx.MustNew[cachex.Config]("CACHE")
	cache := cachex.New(*cacheCfg)
	go sweepCache(cache, cacheCfg.SweepInterval)

	store := newSessionStore()

	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")
	client := openaix.NewClient(*openaiCfg)
	if client == nil {
		log.Warn().Msg("openai api key not set; model calls will degrade to fallbacks")
	}

	prompts := promptx.LoadPromptSet()

	routerModel := llmx.NewModel(client, *llmCfg, llmx.PurposeRouter, cache)
	salesModel := llmx.NewModel(client, *llmCfg, llmx.PurposeSales, cache)
	medicalModel := llmx.NewModel(client, *llmCfg, llmx.PurposeMedical, cache)

	provider := newCatalogProvider()
	salesTools := &toolx.Set{
		Refine: toolx.NewRefine(salesModel, prompts.Refine),
		Search: toolx.NewSearch(provider, cache),
		Filter: toolx.NewFilter(),
	}
	medicalTools := &toolx.Set{
		Refine: toolx.NewRefine(medicalModel, prompts.Refine),
		Search: toolx.NewSearch(provider, cache),
		Filter: toolx.NewFilter(),
	}

	queryRouter := routerx.New(routerModel, prompts.Router)
	specialists := []contractx.Specialist{
		salesx.New(salesModel, store, salesTools, prompts.Sales, prompts.Decide),
		medicalx.New(medicalModel, store, medicalTools, prompts.Medical, prompts.Decide),
	}

	service, err := orchestrator.New(queryRouter, specialists)
	if err != nil {
		panic(err)
	}

	serverCfg := configx.MustNew[httpserver.Config]("HTTP")
	server, err := httpserver.New(*serverCfg, service, store, cache)
	if err != nil {
		panic(err)
	}
	if err := server.Run(); err != nil {
		panic(err)
	}
}

// newSessionStore wires the in-memory store with an optional snapshot
// persister: Upstash Redis when configured, Postgres as the next choice,
// memory-only otherwise.
func newSessionStore() *sessionx.Store {
	sessionCfg := configx.MustNew[sessionx.Config]("SESSION")

	upstashCfg := configx.MustNew[sessionx.UpstashConfig]("UPSTASH_REDIS")
	if upstashCfg.URL != "" {
		persister, err := sessionx.NewUpstashStore(*upstashCfg)
		if err != nil {
			panic(err)
		}
		log.Info().Msg("session snapshots: upstash redis")
		return sessionx.NewStore(*sessionCfg, sessionx.WithPersister(persister))
	}

	pgCfg := configx.MustNew[sessionx.PostgresConfig]("POSTGRES")
	if pgCfg.DSN != "" {
		persister, err := sessionx.NewPostgresStore(*pgCfg)
		if err != nil {
			panic(err)
		}
		if err := persister.EnsureSchema(context.Background()); err != nil {
			panic(err)
		}
		log.Info().Msg("session snapshots: postgres")
		return sessionx.NewStore(*sessionCfg, sessionx.WithPersister(persister))
	}

	log.Info().Msg("session snapshots: memory only")
	return sessionx.NewStore(*sessionCfg)
}

// newCatalogProvider builds the HTTP catalog client, or the stub inventory
// when no backend is configured.
func newCatalogProvider() contractx.CatalogProvider {
	catalogCfg := configx.MustNew[catalogx.Config]("CATALOG")
	if catalogCfg.BaseURL == "" {
		log.Warn().Msg("catalog base url not set; serving stub inventory")
		return catalogx.NewStub()
	}
	provider, err := catalogx.NewClient(*catalogCfg)
	if err != nil {
		panic(err)
	}
	return provider
}

func sweepCache(cache *cachex.Cache, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if evicted := cache.EvictExpired(); evicted > 0 {
			log.Debug().Int("evicted", evicted).Msg("cache sweep")
		}
	}
}
