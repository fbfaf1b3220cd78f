// Package covers picks cover image references for catalog entries. Images
// live as files in a directory and are served by the web layer; this package
// only hands out filenames.
package covers

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultCover is the reference handed out when no image can be selected.
const DefaultCover = "default-cover.png"

// Provider selects random cover references, avoiding immediate repeats via a
// bounded recently-served set. The set is owned by the provider instance, not
// process-global, so replicas and tests stay independent; Reset clears it.
type Provider struct {
	dir        string
	recentSize int

	mu     sync.Mutex
	recent map[string]struct{}
	order  []string
	rng    *rand.Rand
}

// New creates a Provider over the given image directory. recentSize bounds
// how many recently-served references are excluded from selection; values
// below 1 disable the exclusion.
func New(dir string, recentSize int) *Provider {
	return &Provider{
		dir:        dir,
		recentSize: recentSize,
		recent:     make(map[string]struct{}),
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
}

// Next returns one cover reference, preferring images not served recently.
// Any failure (missing directory, no images) degrades to DefaultCover.
func (p *Provider) Next() string {
	names := p.list()
	if len(names) == 0 {
		return DefaultCover
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Prefer unseen covers; fall back to any when all are recent.
	fresh := names[:0:0]
	for _, n := range names {
		if _, seen := p.recent[n]; !seen {
			fresh = append(fresh, n)
		}
	}
	pool := fresh
	if len(pool) == 0 {
		pool = names
	}

	pick := pool[p.rng.Intn(len(pool))]
	p.remember(pick)
	return pick
}

// NextN returns n cover references.
func (p *Provider) NextN(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = p.Next()
	}
	return out
}

// Reset clears the recently-served set.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = make(map[string]struct{})
	p.order = nil
}

// remember adds a reference to the recent set, evicting the oldest entry once
// the bound is reached. Caller holds the lock.
func (p *Provider) remember(name string) {
	if p.recentSize < 1 {
		return
	}
	if _, ok := p.recent[name]; ok {
		return
	}
	p.recent[name] = struct{}{}
	p.order = append(p.order, name)
	for len(p.order) > p.recentSize {
		delete(p.recent, p.order[0])
		p.order = p.order[1:]
	}
}

// list returns the image filenames in the provider directory.
func (p *Provider) list() []string {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	return names
}
