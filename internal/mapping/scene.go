package mapping

import (
	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/model"
)

// Params are the tunable policy knobs of the mapping engine. Historical
// variants of these constants diverged; the defaults here are the
// canonical set.
type Params struct {
	Mode              OrbitMode
	OrbitBase         float64
	OrbitAgeFactor    float64
	MinSpacing        float64
	SpacingMultiplier float64
	MaxEccentricity   float64
	Variants          int
}

// DefaultParams returns the canonical mapping knobs.
func DefaultParams() Params {
	return Params{
		Mode:              ModeNewerCloser,
		OrbitBase:         constants.OrbitBase,
		OrbitAgeFactor:    constants.OrbitAgeFactor,
		MinSpacing:        constants.OrbitMinSpacing,
		SpacingMultiplier: constants.OrbitSpacingMultiplier,
		MaxEccentricity:   constants.MaxEccentricity,
		Variants:          constants.PlanetVariants,
	}
}

// BuildScene derives the full output contract from the visible records:
// one SceneObject per record, in input order, plus aggregate stats and
// the central body radius. Pure: calling it twice with identical inputs
// yields bit-identical scenes.
func BuildScene(records []model.Repository, snap model.SnapshotContext, p Params) model.Scene {
	stats := model.SceneStats{TotalRepos: len(records)}
	maxRecent := 0
	maxDays := 0

	for i := range records {
		r := &records[i]
		stats.TotalCommits += r.TotalCommits
		stats.TotalStars += r.Stars
		stats.TotalForks += r.Forks
		if recent := RecentActivity(r); recent > maxRecent {
			maxRecent = recent
		}
		if r.DaysSinceCreation > maxDays {
			maxDays = r.DaysSinceCreation
		}
	}

	sunRadius := SunRadius(stats.TotalStars)

	objects := make([]model.SceneObject, 0, len(records))
	for i := range records {
		r := &records[i]
		objects = append(objects, model.SceneObject{
			Record: r,
			Visual: visualFor(r, i, sunRadius, maxRecent, maxDays, p),
		})
	}

	return model.Scene{
		Objects:   objects,
		SunRadius: sunRadius,
		Stats:     stats,
		Snapshot:  snap,
	}
}

// visualFor computes the visual parameters of one body.
func visualFor(r *model.Repository, index int, sunRadius float64, maxRecent, maxDays int, p Params) model.VisualParameters {
	radius := BodyRadius(r.SizeKB)
	satellites := SatelliteCount(r.BranchCount)
	ringInner, ringOuter := RingDimensions(radius, r.BranchCount)

	orbit := OrbitalRadius(OrbitParams{
		DaysOld:           r.DaysSinceCreation,
		MaxDaysOld:        maxDays,
		Index:             index,
		Mode:              p.Mode,
		Base:              p.OrbitBase,
		AgeFactor:         p.OrbitAgeFactor,
		SunRadius:         sunRadius,
		BodyRadius:        radius,
		MaxEccentricity:   p.MaxEccentricity,
		MinSpacing:        p.MinSpacing,
		SpacingMultiplier: p.SpacingMultiplier,
	})

	return model.VisualParameters{
		Radius:               radius,
		Mass:                 Mass(radius, r.SizeKB),
		OrbitalRadius:        orbit,
		OrbitalSpeed:         OrbitalSpeed(RecentActivity(r), maxRecent),
		Eccentricity:         Eccentricity(r.FullName(), p.MaxEccentricity),
		RingInnerRadius:      ringInner,
		RingOuterRadius:      ringOuter,
		HasRings:             HasRings(r.BranchCount),
		SatelliteCount:       satellites,
		SatelliteOrbitRadius: SatelliteOrbits(radius, satellites),
		Variant:              Variant(r.FullName(), p.Variants),
	}
}
