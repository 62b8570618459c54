package logger

import (
	"fmt"
	"sync"

	log_model "healthcare-booking/models/log"
	"healthcare-booking/types"

	"gorm.io/gorm"
)

// AsyncLogger persists request logs off the request path.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100),
		done:    make(chan struct{}),
	}
}

// ProcessLog drains the channel until Close is called. Run it in its own goroutine.
func (logger *AsyncLogger) ProcessLog() {
	Info("Starting asynchronous request logger")
	defer close(logger.done)

	for entry := range logger.channel {
		dbLog := log_model.Log{
			Method:          entry.Method,
			URL:             entry.URL,
			IPAddress:       entry.IPAddress,
			AccountID:       entry.AccountID,
			RequestBody:     entry.RequestBody,
			ResponseBody:    entry.ResponseBody,
			RequestHeaders:  entry.RequestHeaders,
			ResponseHeaders: entry.ResponseHeaders,
			StatusCode:      entry.StatusCode,
			DurationMs:      entry.DurationMs,
			CreatedAt:       entry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			Error(fmt.Sprintf("Failed to insert log entry %s %s", entry.Method, entry.URL), err)
		}
	}
}

// Log queues an entry without blocking; it is dropped when the buffer is full.
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	logger.mu.RLock()
	defer logger.mu.RUnlock()
	if logger.closed {
		return
	}

	select {
	case logger.channel <- entry:
	default:
		Warning(fmt.Sprintf("Request log buffer full, dropping %s %s", entry.Method, entry.URL))
	}
}

// Close stops accepting entries and waits for ProcessLog to write the queued ones.
func (logger *AsyncLogger) Close() {
	logger.mu.Lock()
	if logger.closed {
		logger.mu.Unlock()
		return
	}
	logger.closed = true
	close(logger.channel)
	logger.mu.Unlock()

	<-logger.done
}
