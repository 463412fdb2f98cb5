package cache

import "time"

const DefaultTTL = time.Hour

// Policy maps tool names to cache TTLs. A Policy is immutable after
// construction; the config watcher swaps the whole table rather than
// mutating it under readers.
type Policy struct {
	defaultTTL time.Duration
	perTool    map[string]time.Duration
}

func NewPolicy(defaultTTL time.Duration, perTool map[string]time.Duration) *Policy {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	table := make(map[string]time.Duration, len(perTool))
	for name, ttl := range perTool {
		if ttl > 0 {
			table[name] = ttl
		}
	}

	return &Policy{
		defaultTTL: defaultTTL,
		perTool:    table,
	}
}

// PolicyFromSeconds builds a Policy from the config representation.
func PolicyFromSeconds(defaultSeconds int, perToolSeconds map[string]int) *Policy {
	perTool := make(map[string]time.Duration, len(perToolSeconds))
	for name, secs := range perToolSeconds {
		perTool[name] = time.Duration(secs) * time.Second
	}
	return NewPolicy(time.Duration(defaultSeconds)*time.Second, perTool)
}

// For returns the TTL for a tool. Unknown tools get the default TTL; a
// policy lookup never fails.
func (p *Policy) For(toolName string) time.Duration {
	if ttl, ok := p.perTool[toolName]; ok {
		return ttl
	}
	return p.defaultTTL
}

func (p *Policy) Default() time.Duration {
	return p.defaultTTL
}
