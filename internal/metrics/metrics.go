package metrics

import (
	"sync"
	"time"
)

// Metrics accumulates per-stage pipeline counters for one run. Rejections
// are counted by reason so a drop can always be traced to a specific rule.
type Metrics struct {
	mu sync.RWMutex

	// Collection
	QueriesIssued  int64
	QueriesFailed  int64
	EntriesFetched int64

	// Per-stage rejections
	NoDate        int64
	OutOfWindow   int64
	StaleTimestamp int64
	ResolveFailed int64
	Rejected      map[string]int64 // classifier reason -> count
	Duplicates    int64

	// Output
	EmittedGeneral int64
	EmittedTopic   int64
	ChunksSent     int64

	// Status
	LastRunTime     time.Time
	LastRunDuration time.Duration
	LastError       string
	LastErrorTime   time.Time
	IsHealthy       bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{Rejected: make(map[string]int64), IsHealthy: true}
}

func (m *Metrics) IncrementQueriesIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueriesIssued++
}

func (m *Metrics) IncrementQueriesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueriesFailed++
}

func (m *Metrics) AddEntriesFetched(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesFetched += n
}

func (m *Metrics) IncrementNoDate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NoDate++
}

func (m *Metrics) IncrementOutOfWindow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutOfWindow++
}

func (m *Metrics) IncrementStaleTimestamp() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleTimestamp++
}

func (m *Metrics) IncrementResolveFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveFailed++
}

func (m *Metrics) IncrementRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected[reason]++
}

func (m *Metrics) IncrementDuplicates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

func (m *Metrics) SetEmitted(general, topic int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmittedGeneral = general
	m.EmittedTopic = topic
}

func (m *Metrics) IncrementChunksSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChunksSent++
}

func (m *Metrics) SetLastRun(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.LastRunDuration = d
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rejected := make(map[string]int64, len(m.Rejected))
	for k, v := range m.Rejected {
		rejected[k] = v
	}

	return map[string]interface{}{
		"queries_issued":       m.QueriesIssued,
		"queries_failed":       m.QueriesFailed,
		"entries_fetched":      m.EntriesFetched,
		"no_date":              m.NoDate,
		"out_of_window":        m.OutOfWindow,
		"stale_timestamp":      m.StaleTimestamp,
		"resolve_failed":       m.ResolveFailed,
		"rejected_by_reason":   rejected,
		"duplicates_filtered":  m.Duplicates,
		"emitted_general":      m.EmittedGeneral,
		"emitted_topic":        m.EmittedTopic,
		"chunks_sent":          m.ChunksSent,
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_error":           m.LastError,
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"is_healthy":           m.IsHealthy,
	}
}
