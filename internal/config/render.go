package config

import "sync"

// RenderSettings holds viewer settings that may change while running.
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in chunks
}

var globalRenderSettings = &RenderSettings{
	renderDistance: 2,
}

const (
	minRenderDistance = 0
	maxRenderDistance = 16
)

// GetRenderDistance returns the current draw distance in chunks
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the draw distance in chunks, clamped to a sane range.
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.renderDistance = min(max(distance, minRenderDistance), maxRenderDistance)
}
