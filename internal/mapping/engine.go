// Package mapping converts repository metrics into the visual
// parameters of the scene. Every function here is pure and total:
// identical inputs yield bit-identical outputs, and all numeric ranges
// are handled by clamping. The renderer re-derives parameters on every
// snapshot change instead of persisting them, so determinism is a hard
// requirement, not a nicety.
package mapping

import (
	"math"

	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/model"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BodyRadius maps a repository size in KB to a planet radius.
func BodyRadius(sizeKB int) float64 {
	if sizeKB < 0 {
		sizeKB = 0
	}
	r := math.Log10(float64(sizeKB)+1) * constants.BodyRadiusScale
	return clamp(r, constants.BodyRadiusMin, constants.BodyRadiusMax)
}

// SunRadius maps the star total across all repositories to the central
// body radius.
func SunRadius(sumStars int) float64 {
	if sumStars < 0 {
		sumStars = 0
	}
	r := math.Log10(float64(sumStars)+1) * constants.SunRadiusScale
	return clamp(r, constants.SunRadiusMin, constants.SunRadiusMax)
}

// SatelliteCount maps a branch count to a number of moons.
func SatelliteCount(branchCount int) int {
	if branchCount < constants.SatelliteCountMin {
		return constants.SatelliteCountMin
	}
	if branchCount > constants.SatelliteCountMax {
		return constants.SatelliteCountMax
	}
	return branchCount
}

// OrbitalSpeed maps recent commit activity, normalized against the most
// active repository in the snapshot, to an angular speed. Monotone in
// recent activity.
func OrbitalSpeed(recent30, maxRecent30 int) float64 {
	if recent30 < 0 {
		recent30 = 0
	}
	norm := 0.0
	if maxRecent30 > 0 {
		norm = math.Log10(float64(recent30)+1) / math.Log10(float64(maxRecent30)+1)
	}
	return constants.OrbitalSpeedBase + clamp(norm, 0, 1)*constants.OrbitalSpeedSpan
}

// Mass maps radius and size to the scalar mass consumed by the external
// lensing effect.
func Mass(radius float64, sizeKB int) float64 {
	if sizeKB < 0 {
		sizeKB = 0
	}
	m := radius * (1 + math.Log10(float64(sizeKB)+1))
	return clamp(m, constants.MassMin, constants.MassMax)
}

// OrbitMode selects how repository age maps onto orbit distance.
type OrbitMode string

const (
	// ModeNewerCloser places recently created repositories on inner
	// orbits (the default: the age term grows with age).
	ModeNewerCloser OrbitMode = "newer-closer"
	// ModeOlderCloser inverts the age term so the oldest repositories
	// orbit closest to the sun.
	ModeOlderCloser OrbitMode = "older-closer"
)

// OrbitParams carries the inputs of one orbital radius computation.
type OrbitParams struct {
	DaysOld    int
	MaxDaysOld int // oldest repository in the snapshot, for inversion
	Index      int
	Mode       OrbitMode

	Base      float64
	AgeFactor float64

	SunRadius  float64
	BodyRadius float64

	MaxEccentricity   float64
	MinSpacing        float64
	SpacingMultiplier float64
}

// Spacing returns the per-index orbit spacing for a body: wide enough
// that neighboring orbits cannot intersect even at maximum eccentricity.
func (p OrbitParams) Spacing() float64 {
	spacing := p.BodyRadius * 2 * (1 + p.MaxEccentricity)
	if spacing < p.MinSpacing {
		spacing = p.MinSpacing
	}
	return spacing * p.SpacingMultiplier
}

// OrbitalRadius computes the orbit distance for one body. The age term
// is raised to clear the central body, then offset per index so that,
// for fixed other parameters, the radius strictly increases with the
// index. That offset is the collision-avoidance guarantee.
func OrbitalRadius(p OrbitParams) float64 {
	days := float64(p.DaysOld)
	if days < 0 {
		days = 0
	}

	var ageTerm float64
	switch p.Mode {
	case ModeOlderCloser:
		maxDays := float64(p.MaxDaysOld)
		if maxDays < days {
			maxDays = days
		}
		ageTerm = p.Base + p.AgeFactor*(math.Sqrt(maxDays)-math.Sqrt(days))
	default:
		ageTerm = p.Base + p.AgeFactor*math.Sqrt(days)
	}

	minFromCenter := p.SunRadius + constants.OrbitSunMargin
	if ageTerm < minFromCenter {
		ageTerm = minFromCenter
	}

	return ageTerm + float64(p.Index)*p.Spacing()
}

// RingDimensions sizes a body's ring from its radius and branch count.
// The inner edge sits strictly outside the body.
func RingDimensions(bodyRadius float64, branchCount int) (inner, outer float64) {
	inner = bodyRadius*1.4 + 0.2
	thickness := clamp(0.25*float64(SatelliteCount(branchCount)), 0.4, bodyRadius)
	outer = inner + thickness
	return inner, outer
}

// HasRings reports whether a body carries a ring at all. Only branchy
// repositories do.
func HasRings(branchCount int) bool {
	return branchCount >= 3
}

// SatelliteOrbits returns one orbit radius per moon, innermost first,
// all strictly outside the body and, when present, outside its ring.
func SatelliteOrbits(bodyRadius float64, count int) []float64 {
	orbits := make([]float64, count)
	base := bodyRadius * 2.2
	step := bodyRadius * 0.6
	if step < 0.5 {
		step = 0.5
	}
	for i := range orbits {
		orbits[i] = base + float64(i)*step
	}
	return orbits
}

// RecentActivity derives the commits-in-last-30-days figure used by the
// orbital speed term. Without per-commit timestamps, a repository with
// recent pushes is attributed its average monthly commit rate; a
// dormant one scores zero.
func RecentActivity(r *model.Repository) int {
	if !r.HasRecentCommits {
		return 0
	}
	days := r.DaysSinceCreation
	if days < constants.RecentCommitWindowDays {
		days = constants.RecentCommitWindowDays
	}
	monthly := r.TotalCommits * constants.RecentCommitWindowDays / days
	if monthly < 1 {
		monthly = 1
	}
	return monthly
}
