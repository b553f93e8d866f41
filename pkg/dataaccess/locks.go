package dataaccess

import "sync"

// GuildLocks hands out one mutex per guild. Read-modify-persist cycles on a
// guild document must run under its lock; interleaving them would race the
// duplicate-open-ticket check and the sequential ID allocation.
type GuildLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGuildLocks creates a new set of guild locks.
func NewGuildLocks() *GuildLocks {
	return &GuildLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Get returns the mutex for the given guild, creating it on first use.
func (g *GuildLocks) Get(guildID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[guildID]
	if !ok {
		l = new(sync.Mutex)
		g.locks[guildID] = l
	}
	return l
}
