package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SlotCache keeps computed availability lists in Redis for a short TTL so
// repeated availability polls do not hit the database. Entries are dropped
// whenever a booking or cancellation changes the doctor's day.
type SlotCache struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSlotCache creates a cache. TTL of zero defaults to 30 seconds.
func NewSlotCache(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *SlotCache {
	if client == nil {
		panic("appointments: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if tracer == nil {
		tracer = otel.Tracer("medisched.internal.appointments.slots")
	}
	return &SlotCache{redis: client, ttl: ttl, tracer: tracer}
}

func slotKey(doctorID, date string) string {
	return fmt.Sprintf("slots:%s:%s", doctorID, date)
}

// Get returns the cached slot list for a doctor+date, or ok=false on miss.
func (c *SlotCache) Get(ctx context.Context, doctorID, date string) ([]string, bool) {
	ctx, span := c.tracer.Start(ctx, "appointments.slots_cache_get")
	defer span.End()

	data, err := c.redis.Get(ctx, slotKey(doctorID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			span.RecordError(err)
		}
		return nil, false
	}
	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		span.RecordError(err)
		return nil, false
	}
	return slots, true
}

// Put stores a computed slot list. Failures are recorded on the span and
// otherwise ignored; the cache is advisory.
func (c *SlotCache) Put(ctx context.Context, doctorID, date string, slots []string) {
	ctx, span := c.tracer.Start(ctx, "appointments.slots_cache_put")
	defer span.End()

	data, err := json.Marshal(slots)
	if err != nil {
		span.RecordError(err)
		return
	}
	if err := c.redis.Set(ctx, slotKey(doctorID, date), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
	}
}

// Invalidate drops the cached list for a doctor+date.
func (c *SlotCache) Invalidate(ctx context.Context, doctorID, date string) {
	ctx, span := c.tracer.Start(ctx, "appointments.slots_cache_invalidate")
	defer span.End()

	if err := c.redis.Del(ctx, slotKey(doctorID, date)).Err(); err != nil {
		span.RecordError(err)
	}
}
