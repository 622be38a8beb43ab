package thriftparse

import (
	"sync"

	"github.com/rs/zerolog"
)

// MemoParser is a ParseImports frontend that caches results by the sha256
// digest of the file content.  It is safe for concurrent use.
type MemoParser struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	files  map[string][]string
}

// NewMemoParser constructs a new MemoParser.
func NewMemoParser(logger zerolog.Logger) *MemoParser {
	return &MemoParser{
		logger: logger,
		files:  make(map[string][]string),
	}
}

// ParseFile returns the imports of the given content.  The digest must
// identify the content; a hit skips scanning.  The returned slice is shared
// and must not be modified.
func (p *MemoParser) ParseFile(digest, content string) []string {
	p.mu.RLock()
	imports, ok := p.files[digest]
	p.mu.RUnlock()
	if ok {
		p.logger.Debug().Str("digest", digest).Msg("parse cache hit")
		return imports
	}

	imports = ParseImports(content)

	p.mu.Lock()
	p.files[digest] = imports
	p.mu.Unlock()

	return imports
}

// Retain drops every cached entry whose digest is not kept.  It returns the
// number of entries dropped.
func (p *MemoParser) Retain(keep func(digest string) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	dropped := 0
	for digest := range p.files {
		if !keep(digest) {
			delete(p.files, digest)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of cached entries.
func (p *MemoParser) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.files)
}
