package thread

import (
	"log"
	"os"
	"strings"
	"sync"
)

// Provider holds the opaque continuity token the remote assistant returns
// after the first exchange. The turn controller reads it before building a
// request and stores it after a response that carried one. An absent token
// simply starts a new remote context; it is never an error.
type Provider interface {
	// Get returns the current continuity token, or false if none is held.
	Get() (string, bool)
	// Set overwrites the held token.
	Set(token string)
	// Clear drops the held token. Only an explicit start-over calls this.
	Clear()
}

// MemoryProvider keeps the continuity token in memory for the lifetime of
// one session.
type MemoryProvider struct {
	mu    sync.Mutex
	token string
}

// NewMemoryProvider creates an empty in-memory continuity provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// Get returns the current token, or false if none has been set.
func (p *MemoryProvider) Get() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token, p.token != ""
}

// Set overwrites the held token.
func (p *MemoryProvider) Set(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

// Clear drops the held token.
func (p *MemoryProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
}

// FileProvider persists the continuity token to a flat file so a
// conversation can be resumed across process restarts. Read failures fall
// back to "no token"; write failures are logged and otherwise ignored, since
// losing continuity is accepted, non-fatal behavior.
type FileProvider struct {
	mu   sync.Mutex
	path string
}

// NewFileProvider creates a provider backed by the file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Get reads the token from the backing file, or returns false if the file is
// missing or empty.
func (p *FileProvider) Get() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Set writes the token to the backing file.
func (p *FileProvider) Set(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.WriteFile(p.path, []byte(token), 0o600); err != nil {
		log.Printf("WARN [thread] Failed to persist continuity token to %s: %v", p.path, err)
	}
}

// Clear removes the backing file.
func (p *FileProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN [thread] Failed to clear continuity token file %s: %v", p.path, err)
	}
}
