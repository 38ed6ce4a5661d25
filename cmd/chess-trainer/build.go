package main

import (
	"context"

	"github.com/lgbarn/chess-trainer-go/internal/agent"
	"github.com/lgbarn/chess-trainer-go/internal/cache"
	"github.com/lgbarn/chess-trainer-go/internal/coach"
	"github.com/lgbarn/chess-trainer-go/internal/config"
	"github.com/lgbarn/chess-trainer-go/internal/eco"
)

// newAgent builds the configured agent client. When the response cache is
// enabled the client is wrapped and the cache is returned so the caller can
// purge it.
func (a *app) newAgent(ctx context.Context) (agent.Client, *cache.Cache, error) {
	cfg := a.cfg.Agent

	var client agent.Client
	switch cfg.Provider {
	case config.ProviderGenAI:
		gc, err := agent.NewGenAIClient(ctx, cfg.APIKey, cfg.Model, a.cfg.AgentTimeout(),
			coach.InstructionsFor(cfg.Agents))
		if err != nil {
			return nil, nil, err
		}
		client = gc
	default:
		client = agent.NewHTTPClient(cfg.Endpoint,
			agent.WithAPIKey(cfg.APIKey),
			agent.WithMaxRetries(cfg.MaxRetries),
			agent.WithTimeout(a.cfg.AgentTimeout()),
			agent.WithLogger(a.logger))
	}

	if !a.cfg.Cache.Enabled {
		return client, nil, nil
	}
	responses := cache.New(a.cfg.Cache.Capacity, a.cfg.CacheTTL())
	return cache.NewClient(client, responses), responses, nil
}

// newCatalog loads the opening catalog file, or the built-in table when no
// file is configured.
func (a *app) newCatalog() (*eco.Catalog, error) {
	if a.cfg.OpeningsFile == "" {
		return eco.Default(), nil
	}
	return eco.LoadFile(a.cfg.OpeningsFile)
}

// newCoach wires the agent client and catalog into a coach service.
func (a *app) newCoach(ctx context.Context) (*coach.Service, *cache.Cache, error) {
	client, responses, err := a.newAgent(ctx)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := a.newCatalog()
	if err != nil {
		return nil, nil, err
	}

	svc := coach.NewService(client, a.cfg.Agent.Agents,
		coach.WithWorkers(a.cfg.Review.Workers),
		coach.WithCatalog(catalog),
		coach.WithLogger(a.logger))
	return svc, responses, nil
}
