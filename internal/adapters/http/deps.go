package http

import (
	"github.com/nats-io/nats.go"

	"github.com/voyago/voyago/internal/adapters/postgres"
	"github.com/voyago/voyago/internal/adapters/valkey"
	"github.com/voyago/voyago/internal/core/ports"
	"github.com/voyago/voyago/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sessions    *usecases.SessionService
	Catalog     *usecases.CatalogService
	Assignments ports.AssignmentRepository
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
