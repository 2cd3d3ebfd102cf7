// Package handlers provides HTTP request handlers for the propverify API.
package handlers

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/propverify"
	"github.com/agentstation/propverify/internal/server/cache"
	ws "github.com/agentstation/propverify/internal/server/websocket"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/provenance"
	"github.com/agentstation/propverify/pkg/regions"
)

// Verifier is the part of *propverify.Verifier the handlers use.
type Verifier interface {
	Verify(ctx context.Context, propertyID string) (*propverify.Result, error)
	Property(ctx context.Context, propertyID string) (*property.Property, error)
	Report(propertyID string) (provenance.ResourceProvenance, bool)
	Ping(ctx context.Context) error
}

var _ Verifier = (*propverify.Verifier)(nil)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	verifier Verifier
	cache    *cache.Cache
	wsHub    *ws.Hub
	upgrader websocket.Upgrader
	regions  regions.Table
	logger   *zerolog.Logger
	version  string
}

// New creates a new Handlers instance.
func New(
	verifier Verifier,
	cache *cache.Cache,
	wsHub *ws.Hub,
	upgrader websocket.Upgrader,
	table regions.Table,
	logger *zerolog.Logger,
	version string,
) *Handlers {
	if table == nil {
		table = regions.Default()
	}
	return &Handlers{
		verifier: verifier,
		cache:    cache,
		wsHub:    wsHub,
		upgrader: upgrader,
		regions:  table,
		logger:   logger,
		version:  version,
	}
}
