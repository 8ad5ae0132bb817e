package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prize Savings Metrics Collector
// Provides comprehensive metrics for monitoring

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all prize savings metrics
type Collector struct {
	// Pool metrics
	PoolTrackedBalance *prometheus.GaugeVec
	PoolPrincipal      *prometheus.GaugeVec
	PoolPrizeYield     *prometheus.GaugeVec
	PoolProtocolFee    *prometheus.GaugeVec
	PoolSharePrice     *prometheus.GaugeVec
	PoolParticipants   *prometheus.GaugeVec
	PoolTotalShares    *prometheus.GaugeVec

	// Ledger operation metrics
	DepositsTotal    *prometheus.CounterVec
	DepositVolume    *prometheus.CounterVec
	WithdrawalsTotal *prometheus.CounterVec
	WithdrawalVolume *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec

	// Yield sync metrics
	SyncsTotal      *prometheus.CounterVec
	SurplusObserved *prometheus.CounterVec
	DeficitObserved *prometheus.CounterVec
	PrincipalLoss   *prometheus.CounterVec

	// Draw metrics
	DrawsStarted    *prometheus.CounterVec
	DrawsCompleted  *prometheus.CounterVec
	DrawBatchSize   *prometheus.HistogramVec
	DrawBatchCursor *prometheus.GaugeVec
	PrizesAwarded   *prometheus.CounterVec
	DrawEntries     *prometheus.GaugeVec

	// Protocol fee metrics
	FeeAccrued   *prometheus.CounterVec
	FeeForwarded *prometheus.CounterVec

	// System metrics
	BlockHeight prometheus.Gauge
	BlockTime   *prometheus.HistogramVec
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Pool metrics
	c.PoolTrackedBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "tracked_balance",
			Help:      "Sum of the three allocation buckets",
		},
		[]string{"pool_id"},
	)

	c.PoolPrincipal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "principal",
			Help:      "Allocated principal backing depositor shares",
		},
		[]string{"pool_id"},
	)

	c.PoolPrizeYield = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "prize_yield",
			Help:      "Yield reserved for the next prize",
		},
		[]string{"pool_id"},
	)

	c.PoolProtocolFee = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "protocol_fee",
			Help:      "Accrued protocol fee bucket",
		},
		[]string{"pool_id"},
	)

	c.PoolSharePrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "share_price",
			Help:      "Principal per share",
		},
		[]string{"pool_id"},
	)

	c.PoolParticipants = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "participants",
			Help:      "Registered participant count",
		},
		[]string{"pool_id"},
	)

	c.PoolTotalShares = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "pool",
			Name:      "total_shares",
			Help:      "Outstanding shares",
		},
		[]string{"pool_id"},
	)

	// Ledger operation metrics
	c.DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "ledger",
			Name:      "deposits_total",
			Help:      "Total number of deposits",
		},
		[]string{"pool_id"},
	)

	c.DepositVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "ledger",
			Name:      "deposit_volume",
			Help:      "Total asset volume deposited",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "ledger",
			Name:      "withdrawals_total",
			Help:      "Total number of withdrawals",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "ledger",
			Name:      "withdrawal_volume",
			Help:      "Total asset volume withdrawn",
		},
		[]string{"pool_id"},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prizepool",
			Subsystem: "ledger",
			Name:      "operation_latency_ms",
			Help:      "Ledger operation latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"operation"},
	)

	// Yield sync metrics
	c.SyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "sync",
			Name:      "total",
			Help:      "Total yield source reconciliations by outcome",
		},
		[]string{"pool_id", "outcome"},
	)

	c.SurplusObserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "sync",
			Name:      "surplus",
			Help:      "Cumulative surplus distributed",
		},
		[]string{"pool_id"},
	)

	c.DeficitObserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "sync",
			Name:      "deficit",
			Help:      "Cumulative deficit absorbed",
		},
		[]string{"pool_id"},
	)

	c.PrincipalLoss = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "sync",
			Name:      "principal_loss",
			Help:      "Cumulative deficit that reached depositor principal",
		},
		[]string{"pool_id"},
	)

	// Draw metrics
	c.DrawsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "draw",
			Name:      "started_total",
			Help:      "Total draws started",
		},
		[]string{"pool_id"},
	)

	c.DrawsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "draw",
			Name:      "completed_total",
			Help:      "Total draws completed by outcome",
		},
		[]string{"pool_id", "outcome"},
	)

	c.DrawBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prizepool",
			Subsystem: "draw",
			Name:      "batch_size",
			Help:      "Participants finalized per batch call",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		},
		[]string{"pool_id"},
	)

	c.DrawBatchCursor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "draw",
			Name:      "batch_cursor",
			Help:      "Current batch cursor of the in-flight draw",
		},
		[]string{"pool_id"},
	)

	c.PrizesAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "draw",
			Name:      "prizes_awarded",
			Help:      "Cumulative prize value awarded",
		},
		[]string{"pool_id"},
	)

	c.DrawEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "draw",
			Name:      "entries",
			Help:      "Total entries of the most recent draw",
		},
		[]string{"pool_id"},
	)

	// Protocol fee metrics
	c.FeeAccrued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "fee",
			Name:      "accrued",
			Help:      "Cumulative protocol fee accrued",
		},
		[]string{"pool_id"},
	)

	c.FeeForwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prizepool",
			Subsystem: "fee",
			Name:      "forwarded",
			Help:      "Cumulative protocol fee paid to the treasury",
		},
		[]string{"pool_id"},
	)

	// System metrics
	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "prizepool",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.BlockTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prizepool",
			Subsystem: "system",
			Name:      "block_time_ms",
			Help:      "Block processing time in milliseconds",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"phase"},
	)

	registerAll(c)
	return c
}

func registerAll(c *Collector) {
	// Pool metrics
	prometheus.MustRegister(c.PoolTrackedBalance)
	prometheus.MustRegister(c.PoolPrincipal)
	prometheus.MustRegister(c.PoolPrizeYield)
	prometheus.MustRegister(c.PoolProtocolFee)
	prometheus.MustRegister(c.PoolSharePrice)
	prometheus.MustRegister(c.PoolParticipants)
	prometheus.MustRegister(c.PoolTotalShares)

	// Ledger operation metrics
	prometheus.MustRegister(c.DepositsTotal)
	prometheus.MustRegister(c.DepositVolume)
	prometheus.MustRegister(c.WithdrawalsTotal)
	prometheus.MustRegister(c.WithdrawalVolume)
	prometheus.MustRegister(c.OperationLatency)

	// Yield sync metrics
	prometheus.MustRegister(c.SyncsTotal)
	prometheus.MustRegister(c.SurplusObserved)
	prometheus.MustRegister(c.DeficitObserved)
	prometheus.MustRegister(c.PrincipalLoss)

	// Draw metrics
	prometheus.MustRegister(c.DrawsStarted)
	prometheus.MustRegister(c.DrawsCompleted)
	prometheus.MustRegister(c.DrawBatchSize)
	prometheus.MustRegister(c.DrawBatchCursor)
	prometheus.MustRegister(c.PrizesAwarded)
	prometheus.MustRegister(c.DrawEntries)

	// Protocol fee metrics
	prometheus.MustRegister(c.FeeAccrued)
	prometheus.MustRegister(c.FeeForwarded)

	// System metrics
	prometheus.MustRegister(c.BlockHeight)
	prometheus.MustRegister(c.BlockTime)
}

// ============ Recording Helpers ============

// RecordPoolState records the pool-level gauges after a state change
func (c *Collector) RecordPoolState(poolID string, tracked, principal, prize, fee, sharePrice, totalShares float64, participants uint64) {
	c.PoolTrackedBalance.WithLabelValues(poolID).Set(tracked)
	c.PoolPrincipal.WithLabelValues(poolID).Set(principal)
	c.PoolPrizeYield.WithLabelValues(poolID).Set(prize)
	c.PoolProtocolFee.WithLabelValues(poolID).Set(fee)
	c.PoolSharePrice.WithLabelValues(poolID).Set(sharePrice)
	c.PoolTotalShares.WithLabelValues(poolID).Set(totalShares)
	c.PoolParticipants.WithLabelValues(poolID).Set(float64(participants))
}

// RecordDeposit records a deposit event
func (c *Collector) RecordDeposit(poolID string, amount float64) {
	c.DepositsTotal.WithLabelValues(poolID).Inc()
	c.DepositVolume.WithLabelValues(poolID).Add(amount)
}

// RecordWithdrawal records a withdrawal event
func (c *Collector) RecordWithdrawal(poolID string, amount float64) {
	c.WithdrawalsTotal.WithLabelValues(poolID).Inc()
	c.WithdrawalVolume.WithLabelValues(poolID).Add(amount)
}

// RecordOperationLatency records ledger operation latency
func (c *Collector) RecordOperationLatency(operation string, latencyMs float64) {
	c.OperationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordSync records a yield reconciliation outcome
func (c *Collector) RecordSync(poolID, outcome string, surplus, deficit, principalLoss float64) {
	c.SyncsTotal.WithLabelValues(poolID, outcome).Inc()
	if surplus > 0 {
		c.SurplusObserved.WithLabelValues(poolID).Add(surplus)
	}
	if deficit > 0 {
		c.DeficitObserved.WithLabelValues(poolID).Add(deficit)
	}
	if principalLoss > 0 {
		c.PrincipalLoss.WithLabelValues(poolID).Add(principalLoss)
	}
}

// RecordDrawStarted records a draw start
func (c *Collector) RecordDrawStarted(poolID string) {
	c.DrawsStarted.WithLabelValues(poolID).Inc()
}

// RecordDrawBatch records batch progress
func (c *Collector) RecordDrawBatch(poolID string, processed uint64, cursor uint64) {
	c.DrawBatchSize.WithLabelValues(poolID).Observe(float64(processed))
	c.DrawBatchCursor.WithLabelValues(poolID).Set(float64(cursor))
}

// RecordDrawCompleted records a draw completion
func (c *Collector) RecordDrawCompleted(poolID, outcome string, prize, entries float64) {
	c.DrawsCompleted.WithLabelValues(poolID, outcome).Inc()
	if prize > 0 {
		c.PrizesAwarded.WithLabelValues(poolID).Add(prize)
	}
	c.DrawEntries.WithLabelValues(poolID).Set(entries)
}

// RecordFeeAccrued records protocol fee accrual
func (c *Collector) RecordFeeAccrued(poolID string, amount float64) {
	c.FeeAccrued.WithLabelValues(poolID).Add(amount)
}

// RecordFeeForwarded records a treasury payout
func (c *Collector) RecordFeeForwarded(poolID string, amount float64) {
	c.FeeForwarded.WithLabelValues(poolID).Add(amount)
}

// UpdateSystemMetrics updates system-level metrics
func (c *Collector) UpdateSystemMetrics(blockHeight int64) {
	c.BlockHeight.Set(float64(blockHeight))
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
