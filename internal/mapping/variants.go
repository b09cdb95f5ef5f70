package mapping

import (
	"github.com/cespare/xxhash/v2"

	"github.com/orrery-cli/orrery/internal/constants"
)

// Variant selects a texture/model variant for a repository by hashing
// its name. The same repository always renders with the same variant
// across sessions without persisting the choice.
func Variant(name string, variants int) int {
	if variants <= 0 {
		variants = constants.PlanetVariants
	}
	return int(xxhash.Sum64String(name) % uint64(variants))
}

// Eccentricity derives a stable orbital eccentricity in [0, maxEcc]
// from the repository name. A distinct hash seed keeps it decorrelated
// from the variant choice.
func Eccentricity(name string, maxEcc float64) float64 {
	if maxEcc <= 0 {
		return 0
	}
	h := xxhash.Sum64String("ecc:" + name)
	// Map the top 20 bits onto [0, 1) for a smooth spread.
	frac := float64(h>>44) / float64(1<<20)
	return frac * maxEcc
}
