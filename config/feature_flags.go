package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags holds the runtime toggles. The sink flags decide which
// optional collaborators the server connects to at startup.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	// FeatureCareerRecommendation derives careerData.recommendedPath from skills.
	FeatureCareerRecommendation = "career.recommendation"

	FeatureSinkSnapshotCache       = "sink.snapshot_cache"       // Redis snapshot projection
	FeatureSinkNotificationArchive = "sink.notification_archive" // Postgres audit table
	FeatureSinkNotificationRelay   = "sink.notification_relay"   // NATS publish
)

// LoadFeatureFlags loads defaults, then FEATURE_* environment overrides.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	for _, f := range []Feature{
		{Name: FeatureCareerRecommendation, Description: "Recommend a career path from the first skill", Enabled: true},
		{Name: FeatureSinkSnapshotCache, Description: "Project profile snapshots into Redis"},
		{Name: FeatureSinkNotificationArchive, Description: "Archive notifications in Postgres"},
		{Name: FeatureSinkNotificationRelay, Description: "Relay notifications over NATS"},
	} {
		f := f
		ff.features[f.Name] = &f
	}
}

func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		if val := os.Getenv(featureNameToEnvKey(name)); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
			}
		}
	}
}

// featureNameToEnvKey converts a feature name to its environment key.
// "sink.snapshot_cache" -> "FEATURE_SINK_SNAPSHOT_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is on. Unknown features are off.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	return ok && feature.Enabled
}

// SetEnabled toggles a feature.
func (ff *FeatureFlags) SetEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}
	feature.Enabled = enabled
	return nil
}

// EnableFeature turns a feature on.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetEnabled(featureName, true)
}

// DisableFeature turns a feature off.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetEnabled(featureName, false)
}

// Enabled returns the names of enabled features, sorted.
func (ff *FeatureFlags) Enabled() []string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	var names []string
	for name, f := range ff.features {
		if f.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// --- Errors ---

// ErrFeatureNotFound is returned when toggling an unknown feature.
var ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
