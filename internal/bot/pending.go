package bot

import "sync"

// pendingCap bounds how many sent lists we remember for reply
// correlation. Oldest entries are evicted first.
const pendingCap = 100

type entry[T any] struct {
	messageID int
	value     T
}

// pending correlates a sent message with the state a reply to it needs:
// the torrent IDs of a numbered list, the file paths of a listing, or a
// restructure plan awaiting confirmation.
type pending[T any] struct {
	mu      sync.Mutex
	entries []entry[T]
}

func (p *pending[T]) add(messageID int, value T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry[T]{messageID: messageID, value: value})
	if len(p.entries) > pendingCap {
		p.entries = p.entries[len(p.entries)-pendingCap:]
	}
}

func (p *pending[T]) find(messageID int) (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.entries) - 1; i >= 0; i-- {
		if p.entries[i].messageID == messageID {
			return p.entries[i].value, true
		}
	}
	var zero T
	return zero, false
}

func (p *pending[T]) remove(messageID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.messageID != messageID {
			kept = append(kept, e)
		}
	}
	p.entries = kept
}
