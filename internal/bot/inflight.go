package bot

import "sync"

// inflight allows one summary per chat at a time.
type inflight struct {
	mu    sync.Mutex
	chats map[int64]struct{}
}

func newInflight() *inflight {
	return &inflight{chats: make(map[int64]struct{})}
}

// acquire reports false if chatID already has a summary running. The
// returned release must be called when ok is true.
func (f *inflight) acquire(chatID int64) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.chats[chatID]; busy {
		return nil, false
	}
	f.chats[chatID] = struct{}{}

	return func() {
		f.mu.Lock()
		delete(f.chats, chatID)
		f.mu.Unlock()
	}, true
}
