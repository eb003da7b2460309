package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stockwise/internal/cache"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Live events pushed to connected dashboards
const (
	EventInventoryAdjusted = "inventory.adjusted"
	EventInventoryLowStock = "inventory.low_stock"
)

// EventPublisher broadcasts domain events; the websocket hub implements it.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

// NoopPublisher discards every event
var NoopPublisher EventPublisher = noopPublisher{}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidID.Withf("Invalid identifier: %s", id)
	}
	return parsed, nil
}

func parseOptionalID(id *string) (*uuid.UUID, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	parsed, err := parseID(*id)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// auditActor turns the authenticated user id into the nullable audit column
func auditActor(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

// writeAudit records a catalog mutation; call it with the transaction context
func writeAudit(ctx context.Context, repo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := &model.AuditLog{
		UserID:     auditActor(userID),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(raw),
	}
	if err := repo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// readThrough serves key from c, falling back to load and populating the cache.
// Cache failures are logged and never fail the request.
func readThrough[T any](ctx context.Context, c cache.Cache, ttl time.Duration, key string, load func() (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if hit {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return value, nil
}

func invalidate(ctx context.Context, c cache.Cache, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
