package forward

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Record remembers which messages have been forwarded during the lifetime of the process.
type Record struct {
	mu  sync.Mutex
	ids map[snowflake.ID]struct{}
}

func NewRecord() *Record {
	return &Record{ids: make(map[snowflake.ID]struct{})}
}

// MarkForwarded inserts messageID and reports whether the caller was the first to do so.
func (r *Record) MarkForwarded(messageID snowflake.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[messageID]; ok {
		return false
	}
	r.ids[messageID] = struct{}{}
	return true
}

func (r *Record) Has(messageID snowflake.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[messageID]
	return ok
}

func (r *Record) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
