package processing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

// FrameCache guarda frames já montados por upload, tipo de margem e período.
// Alternar o tipo de margem sobre a mesma janela reaproveita o frame em cache
// via Reselect em vez de reler a planilha inteira.
type FrameCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	frame     *domain.SalesFrame
	uploadID  string
	windowKey string
	expiresAt time.Time
}

func NewFrameCache(ttl time.Duration) *FrameCache {
	return &FrameCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Key deriva a chave de cache do upload, do tipo de margem e da janela. O
// hash mantém a chave opaca e de tamanho fixo independente do tamanho do
// identificador do upload.
func (c *FrameCache) Key(uploadID string, marginType domain.MarginType, start, end time.Time) string {
	return hashKey(fmt.Sprintf("%s|%s|%s", uploadID, marginType, windowKey(start, end)))
}

func windowKey(start, end time.Time) string {
	return fmt.Sprintf("%s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (c *FrameCache) Get(key string) (*domain.SalesFrame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.frame, true
}

func (c *FrameCache) Set(key string, uploadID string, start, end time.Time, frame *domain.SalesFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		frame:     frame,
		uploadID:  uploadID,
		windowKey: windowKey(start, end),
		expiresAt: time.Now().Add(c.ttl),
	}
}

// GetAnyForWindow devolve qualquer frame válido do mesmo upload e janela,
// independente do tipo de margem. É a base da reseleção barata: um frame da
// janela com a outra margem serve como ponto de partida.
func (c *FrameCache) GetAnyForWindow(uploadID string, start, end time.Time) (*domain.SalesFrame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wk := windowKey(start, end)
	now := time.Now()
	for _, entry := range c.entries {
		if entry.uploadID == uploadID && entry.windowKey == wk && now.Before(entry.expiresAt) {
			return entry.frame, true
		}
	}
	return nil, false
}

// InvalidateUpload remove todos os frames de um upload. Chamado quando uma
// nova planilha substitui a anterior do mesmo dono.
func (c *FrameCache) InvalidateUpload(uploadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.uploadID == uploadID {
			delete(c.entries, key)
		}
	}
}

// Sweep descarta entradas expiradas. Executado periodicamente pelo scheduler.
func (c *FrameCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len é usado apenas em testes e no log do sweeper.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
