// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bufio"
	"os"
	"regexp"
	"sync"
)

var shebangLine = regexp.MustCompile(`^#![^\n]*`)

type (
	// State is the mutable state of one build invocation. It is created by
	// Resolve and never shared between invocations.
	State struct {
		mu       sync.Mutex
		shebangs map[string]string
	}

	// Cache memoizes import resolutions across the targets of one build. It
	// is filled by the first compiled format and read by the later ones.
	// A nil *Cache is valid and caches nothing.
	Cache struct {
		mu       sync.RWMutex
		resolved map[string]string
	}
)

// NewState returns an empty invocation state.
func NewState() *State {
	return &State{shebangs: make(map[string]string)}
}

// Shebang returns the shebang line recorded for entry.
func (s *State) Shebang(entry string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shebangs[entry]
}

// SetShebang records the shebang line of entry. An empty line clears it.
func (s *State) SetShebang(entry, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == "" {
		delete(s.shebangs, entry)
		return
	}
	s.shebangs[entry] = line
}

// ScanShebang reads the first line of entry and records it when it is a
// shebang. Unreadable files record nothing; the compiler reports them.
func (s *State) ScanShebang(entry string) string {
	f, err := os.Open(entry)
	if err != nil {
		return ""
	}
	defer f.Close()

	line, _ := bufio.NewReader(f).ReadString('\n')
	bang := shebangLine.FindString(line)
	s.SetShebang(entry, bang)
	return bang
}

// StripShebang removes a leading shebang line from source code.
func StripShebang(code string) (string, string) {
	bang := shebangLine.FindString(code)
	return code[len(bang):], bang
}

// NewCache returns an empty resolution cache.
func NewCache() *Cache {
	return &Cache{resolved: make(map[string]string)}
}

// Lookup returns the cached resolution for key.
func (c *Cache) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.resolved[key]
	return p, ok
}

// Store records a resolution.
func (c *Cache) Store(key, path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved[key] = path
}

// Len returns the number of cached resolutions.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resolved)
}
