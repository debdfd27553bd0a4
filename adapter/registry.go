// Package adapter provides the model capability registry.
package adapter

import (
	"sort"
	"strings"
	"sync"
)

// Tier is a model's structured-output capability.
type Tier int

const (
	// TierNative models enforce a supplied JSON schema server-side.
	TierNative Tier = iota
	// TierLegacy models only offer the generic json_object mode and must be
	// told about the schema in the prompt.
	TierLegacy
)

func (t Tier) String() string {
	switch t {
	case TierLegacy:
		return "legacy"
	default:
		return "native"
	}
}

// LegacyJSONModels are the model names, matched exactly or as a prefix, that
// lack schema-constrained decoding.
var LegacyJSONModels = []string{
	"gpt-4-turbo",
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-0613",
	"gpt-3.5-turbo-1106",
	"gpt-4-1106-preview",
}

// ModelRule assigns a tier to every model name starting with Prefix.
type ModelRule struct {
	Prefix string
	Tier   Tier
}

// Registry classifies models into tiers. The longest matching prefix wins;
// models matching no rule are native.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Tier
}

// NewRegistry creates a registry with the given legacy prefixes, or with
// LegacyJSONModels when none are given.
func NewRegistry(legacyPrefixes ...string) *Registry {
	if len(legacyPrefixes) == 0 {
		legacyPrefixes = LegacyJSONModels
	}
	registry := &Registry{rules: make(map[string]Tier, len(legacyPrefixes))}
	for _, prefix := range legacyPrefixes {
		registry.Register(prefix, TierLegacy)
	}
	return registry
}

// Register adds or replaces the rule for prefix. Registering a longer prefix
// with a different tier carves an exception out of a shorter one.
func (r *Registry) Register(prefix string, tier Tier) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[prefix] = tier
}

// Classify returns the tier for model.
func (r *Registry) Classify(model string) Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best, tier := -1, TierNative
	for prefix, t := range r.rules {
		if strings.HasPrefix(model, prefix) && len(prefix) > best {
			best, tier = len(prefix), t
		}
	}
	return tier
}

// Rules returns the registered rules ordered by prefix.
func (r *Registry) Rules() []ModelRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]ModelRule, 0, len(r.rules))
	for prefix, tier := range r.rules {
		rules = append(rules, ModelRule{Prefix: prefix, Tier: tier})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Prefix < rules[j].Prefix })
	return rules
}

var defaultRegistry *Registry
var defaultRegistryOnce sync.Once

// GetDefaultRegistry returns the default registry.
func GetDefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// RegisterModel registers a rule in the default registry.
func RegisterModel(prefix string, tier Tier) {
	GetDefaultRegistry().Register(prefix, tier)
}
