package main

import (
	"context"

	"github.com/searchlens/gapintel/internal/infrastructure/database/postgres"
	"github.com/searchlens/gapintel/internal/infrastructure/database/redis"
)

// Build-time variable injected via ldflags.
var version = "dev"

// Readiness adapters for the health handler.

type postgresChecker struct {
	conn *postgres.Connection
}

func (c postgresChecker) Name() string { return "postgres" }

func (c postgresChecker) Check(ctx context.Context) error {
	return c.conn.HealthCheck(ctx)
}

type redisChecker struct {
	client *redis.Client
}

func (c redisChecker) Name() string { return "redis" }

func (c redisChecker) Check(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}
