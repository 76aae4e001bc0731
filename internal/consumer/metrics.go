package consumer

import (
	"sync"
	"time"
)

// Metrics 监控指标
type Metrics struct {
	mu sync.RWMutex

	MessagesProcessed int64
	MessagesSucceeded int64
	MessagesFailed    int64
	MessagesSkipped   int64

	ErrorsParse   int64
	ErrorsLoad    int64
	ErrorsProcess int64

	LastProcessTime time.Time
	StartTime       time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// GetSnapshot 获取指标快照（线程安全）
func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		MessagesProcessed: m.MessagesProcessed,
		MessagesSucceeded: m.MessagesSucceeded,
		MessagesFailed:    m.MessagesFailed,
		MessagesSkipped:   m.MessagesSkipped,
		ErrorsParse:       m.ErrorsParse,
		ErrorsLoad:        m.ErrorsLoad,
		ErrorsProcess:     m.ErrorsProcess,
		LastProcessTime:   m.LastProcessTime,
		StartTime:         m.StartTime,
	}
}

func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesProcessed++
}

func (m *Metrics) IncrementSucceeded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSucceeded++
	m.LastProcessTime = time.Now()
}

func (m *Metrics) IncrementSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSkipped++
}

// IncrementFailed errorType is one of "parse", "load", "process".
func (m *Metrics) IncrementFailed(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesFailed++
	switch errorType {
	case "parse":
		m.ErrorsParse++
	case "load":
		m.ErrorsLoad++
	case "process":
		m.ErrorsProcess++
	}
}
