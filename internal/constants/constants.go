// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the orrery application.
package constants

import "time"

// Cache TTL constants
const (
	// BasicListCacheTTL is the maximum age of a cached repository list
	// before a full refresh is required.
	BasicListCacheTTL = 1 * time.Hour

	// DetailCacheTTL is the maximum age of cached per-repository detail
	// counts before they are considered stale and require re-fetching.
	DetailCacheTTL = 24 * time.Hour
)

// Rate-budget scheduler constants
const (
	// EnrichBatchSize is the number of repositories enriched concurrently
	// within one scheduler batch. Batches run strictly sequentially.
	EnrichBatchSize = 6

	// BudgetSafetyThreshold stops scheduling when the estimated remaining
	// request budget drops to this value or below.
	BudgetSafetyThreshold = 5

	// InterBatchDelay separates consecutive batches to smooth burst load
	// on the GitHub API.
	InterBatchDelay = 200 * time.Millisecond

	// RequestsPerRepo is the accounting estimate of API requests consumed
	// per repository enrichment (commits, branches, issues).
	RequestsPerRepo = 3

	// RequestsPerForkParent is the additional accounting estimate for a
	// fork whose parent PR count is also verified.
	RequestsPerForkParent = 1

	// ConservativeRemaining is the assumed remaining budget when the
	// repository list is served from cache and no rate-limit headers
	// were observed this session.
	ConservativeRemaining = 60
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 10
)

// Procedural mapping constants
const (
	// BodyRadiusMin and BodyRadiusMax clamp planet radii.
	BodyRadiusMin = 1.6
	BodyRadiusMax = 18.0

	// BodyRadiusScale multiplies log10(sizeKB+1) to produce a radius.
	BodyRadiusScale = 1.5

	// SunRadiusMin and SunRadiusMax clamp the central body radius.
	SunRadiusMin = 4.0
	SunRadiusMax = 40.0

	// SunRadiusScale multiplies log10(sumStars+1).
	SunRadiusScale = 300.0

	// SatelliteCountMin and SatelliteCountMax clamp the moons-per-planet
	// count derived from the branch count.
	SatelliteCountMin = 1
	SatelliteCountMax = 8

	// OrbitalSpeedBase and OrbitalSpeedSpan bound orbital speed: speed is
	// base plus a normalized recent-activity term times span.
	OrbitalSpeedBase = 0.05
	OrbitalSpeedSpan = 0.45

	// OrbitBase and OrbitAgeFactor shape the age term of the orbital
	// radius: base + ageFactor*sqrt(daysOld).
	OrbitBase      = 30.0
	OrbitAgeFactor = 1.2

	// OrbitSunMargin keeps every orbit outside the central body.
	OrbitSunMargin = 8.0

	// OrbitMinSpacing is the floor for the per-index orbit spacing.
	OrbitMinSpacing = 12.0

	// OrbitSpacingMultiplier scales the per-index spacing. Historical
	// variants used 1.5 and 0.8; 0.8 is the canonical value.
	OrbitSpacingMultiplier = 0.8

	// MaxEccentricity bounds orbital eccentricity so that the spacing
	// guarantee holds at apoapsis.
	MaxEccentricity = 0.25

	// MassMin and MassMax clamp the scalar mass used by the downstream
	// lensing effect.
	MassMin = 0.5
	MassMax = 100.0

	// PlanetVariants is the number of planet texture variants selectable
	// by the deterministic name hash.
	PlanetVariants = 8

	// RecentCommitWindowDays is the lookback window that defines "recent"
	// activity for the orbital speed term.
	RecentCommitWindowDays = 30
)

// API constants
const (
	// ListPerPage is the page size for repository list requests.
	ListPerPage = 100

	// CountPerPage is the page size for the pagination counting trick:
	// with one item per page, the last page number equals the total count.
	CountPerPage = 1
)
