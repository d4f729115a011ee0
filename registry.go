package crate

import (
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

var (
	registry   = make(map[reflect.Type]*typePlan)
	registryMu sync.RWMutex
)

// planFor returns the cached field plan for rt or builds one from the
// metadata sentinel already holds for it.
func planFor(rt reflect.Type) (*typePlan, error) {
	return loadPlan(rt, lookupMetadata)
}

// loadPlan returns the cached plan for rt, building it from describe on a miss.
func loadPlan(rt reflect.Type, describe func(reflect.Type) sentinel.Metadata) (*typePlan, error) {
	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[rt]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[rt]; ok {
		return cached, nil
	}

	plan, err := buildPlan(rt, describe(rt))
	if err != nil {
		return nil, err
	}

	registry[rt] = plan
	return plan, nil
}

// Reset clears the field plan registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*typePlan)
}
