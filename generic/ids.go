package generic

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// ID GENERATION - unique identifiers for records and history entries
// =============================================================================

// IDGenerator produces unique identifiers. The prefix distinguishes record
// families from history entries ("tkt", "inv", "hist").
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator is the production generator.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// SequenceGenerator produces deterministic, monotonically increasing IDs.
// Used in tests where IDs must be predictable.
type SequenceGenerator struct {
	mu   sync.Mutex
	next map[string]int
}

func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{next: make(map[string]int)}
}

func (g *SequenceGenerator) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[prefix]++
	return fmt.Sprintf("%s-%06d", prefix, g.next[prefix])
}
