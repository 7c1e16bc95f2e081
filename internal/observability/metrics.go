package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtelltales_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vtelltales_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedQueryLatency records feed composition latency per feed kind.
	FeedQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vtelltales_feed_query_latency_seconds",
		Help:    "Feed query latency in seconds by feed kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	// NotificationFanout counts notification fan-out attempts by outcome.
	NotificationFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtelltales_notification_fanout_total",
		Help: "Total notification fan-out batches by outcome",
	}, []string{"type", "outcome"})

	// ModerationFlags counts report/block flag writes by target and flag level.
	ModerationFlags = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtelltales_moderation_flags_total",
		Help: "Total moderation flags recorded by target kind and flag level",
	}, []string{"target", "flag"})

	// CacheResults counts cache lookups by key family and hit/miss.
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtelltales_cache_results_total",
		Help: "Total cache lookups by key family and result",
	}, []string{"family", "result"})
)

const queryStartKey = "observability:query_start"

// QueryTimer is a gorm plugin feeding DatabaseQueryLatency for every
// statement the connection runs. database.Connect registers it once.
type QueryTimer struct{}

func (QueryTimer) Name() string { return "observability:query_timer" }

func (QueryTimer) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).
				Observe(time.Since(v.(time.Time)).Seconds())
		}
	}

	cb := db.Callback()
	var err error
	reg := func(e error) {
		if err == nil {
			err = e
		}
	}
	reg(cb.Create().Before("gorm:create").Register("metrics:create_start", before))
	reg(cb.Create().After("gorm:create").Register("metrics:create_done", after("create")))
	reg(cb.Query().Before("gorm:query").Register("metrics:query_start", before))
	reg(cb.Query().After("gorm:query").Register("metrics:query_done", after("query")))
	reg(cb.Update().Before("gorm:update").Register("metrics:update_start", before))
	reg(cb.Update().After("gorm:update").Register("metrics:update_done", after("update")))
	reg(cb.Delete().Before("gorm:delete").Register("metrics:delete_start", before))
	reg(cb.Delete().After("gorm:delete").Register("metrics:delete_done", after("delete")))
	reg(cb.Row().Before("gorm:row").Register("metrics:row_start", before))
	reg(cb.Row().After("gorm:row").Register("metrics:row_done", after("row")))
	reg(cb.Raw().Before("gorm:raw").Register("metrics:raw_start", before))
	reg(cb.Raw().After("gorm:raw").Register("metrics:raw_done", after("raw")))
	return err
}

// TrackFeed returns a function that records feed query latency when called.
func TrackFeed(feed string) func() {
	start := time.Now()
	return func() {
		FeedQueryLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	}
}
