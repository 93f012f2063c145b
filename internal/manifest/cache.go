// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import "sync"

var (
	// Process-wide cache, keyed by API base URL. Lives only in RAM.
	globalCache     = map[string]*Manifest{}
	globalCacheLock sync.RWMutex
)

// GetCached returns the cached manifest for baseURL, or nil.
func GetCached(baseURL string) *Manifest {
	globalCacheLock.RLock()
	defer globalCacheLock.RUnlock()
	return globalCache[baseURL]
}

// SetCached stores the manifest for baseURL in RAM.
func SetCached(baseURL string, m *Manifest) {
	globalCacheLock.Lock()
	defer globalCacheLock.Unlock()
	globalCache[baseURL] = m
}

// ClearCache removes every cached manifest (primarily for testing).
func ClearCache() {
	globalCacheLock.Lock()
	defer globalCacheLock.Unlock()
	globalCache = map[string]*Manifest{}
}
