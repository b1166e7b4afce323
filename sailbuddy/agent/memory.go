package agent

import (
	"sync"

	"github.com/cloudwego/eino/schema"
)

// Memory is the conversation history shared by every query of the process.
// It lives only in memory.
type Memory struct {
	mu       sync.Mutex
	messages []*schema.Message
	limit    int
}

// NewMemory keeps at most limit messages, dropping the oldest first. A limit
// of zero or less keeps everything.
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit}
}

// Messages returns a copy of the history, oldest first.
func (m *Memory) Messages() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*schema.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *Memory) Append(msgs ...*schema.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msgs...)
	if m.limit <= 0 || len(m.messages) <= m.limit {
		return
	}

	drop := len(m.messages) - m.limit
	// The history never opens with a reply to a question it no longer holds.
	for drop < len(m.messages) && m.messages[drop].Role != schema.User {
		drop++
	}
	m.messages = append([]*schema.Message(nil), m.messages[drop:]...)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
