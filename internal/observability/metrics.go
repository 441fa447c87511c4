package observability

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
)

const metricPrefix = "fisionote:metrics:"

// Metrics keeps pipeline health counters in redis so every instance
// increments the same totals. All methods are fire-and-forget: a metrics
// write never fails a clinical operation.
type Metrics struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewMetrics(rdb *redis.Client, baseLog *logger.Logger) *Metrics {
	return &Metrics{rdb: rdb, log: baseLog.With("component", "metrics")}
}

// IncrParse counts one parse outcome, labeled by the envelope source the
// parser extracted from ("object", "text", "string+repair", "error", ...).
func (m *Metrics) IncrParse(ctx context.Context, source string) {
	m.incr(ctx, "parse_total:"+sanitizeLabel(source))
}

// IncrValidation counts one validation pass by outcome.
func (m *Metrics) IncrValidation(ctx context.Context, valid bool) {
	if valid {
		m.incr(ctx, "validation_total:valid")
		return
	}
	m.incr(ctx, "validation_total:invalid")
}

// IncrCorrection counts one auto-correction that actually applied rules.
func (m *Metrics) IncrCorrection(ctx context.Context) {
	m.incr(ctx, "correction_total")
}

// RecordDriftKeys counts contract drift: top-level keys the normalizer
// could not map. Each distinct key also gets its own counter so a new
// model version announcing a renamed field shows up by name.
func (m *Metrics) RecordDriftKeys(ctx context.Context, keys []string) {
	if len(keys) == 0 || m.rdb == nil {
		return
	}
	pipe := m.rdb.Pipeline()
	pipe.IncrBy(ctx, metricPrefix+"drift_keys_total", int64(len(keys)))
	for _, key := range keys {
		pipe.Incr(ctx, metricPrefix+"drift_key:"+sanitizeLabel(key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		m.log.Warn("drift metric write failed", "error", err)
	}
}

// Snapshot reads every counter under the metric prefix; used by the
// health/metrics endpoint.
func (m *Metrics) Snapshot(ctx context.Context) (map[string]int64, error) {
	if m.rdb == nil {
		return map[string]int64{}, nil
	}
	out := map[string]int64{}
	iter := m.rdb.Scan(ctx, 0, metricPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := m.rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out[strings.TrimPrefix(key, metricPrefix)] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan metrics: %w", err)
	}
	return out, nil
}

func (m *Metrics) incr(ctx context.Context, name string) {
	if m.rdb == nil {
		return
	}
	if err := m.rdb.Incr(ctx, metricPrefix+name).Err(); err != nil {
		m.log.Warn("metric write failed", "metric", name, "error", err)
	}
}

func sanitizeLabel(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '+', r == '.':
			return r
		default:
			return '_'
		}
	}, raw)
}
