package midi

// Quality names a threshold preset trading recall for precision
type Quality string

const (
	QualityFast     Quality = "fast"
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
)

// DefaultQuality is used when the caller omits or misspells the tier
const DefaultQuality = QualityStandard

// Profile holds the model confidence cutoffs for one quality tier.
// Higher values keep fewer, more confident notes.
type Profile struct {
	Quality        Quality
	OnsetThreshold float64
	FrameThreshold float64
}

var profiles = map[Quality]Profile{
	QualityFast:     {Quality: QualityFast, OnsetThreshold: 0.3, FrameThreshold: 0.1},
	QualityStandard: {Quality: QualityStandard, OnsetThreshold: 0.4, FrameThreshold: 0.2},
	QualityHigh:     {Quality: QualityHigh, OnsetThreshold: 0.5, FrameThreshold: 0.3},
}

// ResolveQuality maps a tier name to its profile. Names match exactly;
// anything else gets the default tier instead of an error.
func ResolveQuality(name string) Profile {
	if p, ok := profiles[Quality(name)]; ok {
		return p
	}
	return profiles[DefaultQuality]
}

// Qualities lists the recognized tiers
func Qualities() []Quality {
	return []Quality{QualityFast, QualityStandard, QualityHigh}
}
