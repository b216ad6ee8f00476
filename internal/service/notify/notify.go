// Package notify delivers transient toast-style notices after cart and
// wishlist mutations. Delivery is best effort and never fails the caller.
package notify

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"storefront/internal/domain"
)

// Notifier receives notices for a storage key.
type Notifier interface {
	Notify(ctx context.Context, storageKey string, n domain.Notice)
}

// Nop discards notices.
type Nop struct{}

func (Nop) Notify(context.Context, string, domain.Notice) {}

// Log writes each notice to a zap logger.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger.Named("notice")}
}

func (l *Log) Notify(_ context.Context, storageKey string, n domain.Notice) {
	l.logger.Info(n.Message, zap.String("storage_key", storageKey), zap.String("kind", string(n.Kind)))
}

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, storageKey string, n domain.Notice) {
	for _, notifier := range m {
		notifier.Notify(ctx, storageKey, n)
	}
}

const (
	defaultPerKey = 20
	defaultKeys   = 10000
)

// Recorder buffers the most recent notices per storage key until drained.
// Keys are held in an LRU, so shoppers who never come back to drain their
// notices are eventually forgotten.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	pending *lru.Cache[string, []domain.Notice]
}

// NewRecorder keeps at most limit notices for each of at most maxKeys
// storage keys. Older notices and least recently used keys are dropped.
func NewRecorder(limit, maxKeys int) *Recorder {
	if limit <= 0 {
		limit = defaultPerKey
	}
	if maxKeys <= 0 {
		maxKeys = defaultKeys
	}
	// lru.New only fails for a non-positive size.
	pending, _ := lru.New[string, []domain.Notice](maxKeys)
	return &Recorder{limit: limit, pending: pending}
}

func (r *Recorder) Notify(_ context.Context, storageKey string, n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, _ := r.pending.Get(storageKey)
	list = append(list, n)
	if len(list) > r.limit {
		list = list[len(list)-r.limit:]
	}
	r.pending.Add(storageKey, list)
}

// Drain returns and forgets the pending notices for storageKey.
func (r *Recorder) Drain(storageKey string) []domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.pending.Peek(storageKey)
	if !ok {
		return []domain.Notice{}
	}
	r.pending.Remove(storageKey)
	return list
}

// Keys reports how many storage keys have pending notices.
func (r *Recorder) Keys() int {
	return r.pending.Len()
}
