package model

// VisualParameters are the derived, output-only visual attributes of one
// repository body. They are never persisted; every snapshot change
// recomputes them from scratch.
type VisualParameters struct {
	Radius          float64 `json:"radius"`
	Mass            float64 `json:"mass"`
	OrbitalRadius   float64 `json:"orbitalRadius"`
	OrbitalSpeed    float64 `json:"orbitalSpeed"`
	Eccentricity    float64 `json:"eccentricity"`
	RingInnerRadius float64 `json:"ringInnerRadius"`
	RingOuterRadius float64 `json:"ringOuterRadius"`
	HasRings        bool    `json:"hasRings"`
	SatelliteCount  int     `json:"satelliteCount"`
	// SatelliteOrbitRadius holds one orbit radius per satellite, ordered
	// innermost first.
	SatelliteOrbitRadius []float64 `json:"satelliteOrbitRadius"`
	// Variant selects the texture/model variant for this body. Stable
	// across sessions for the same repository name.
	Variant int `json:"variant"`
}

// SceneObject pairs a repository record with its computed visual
// parameters. This is the unit of the output contract to the renderer.
type SceneObject struct {
	Record *Repository      `json:"record"`
	Visual VisualParameters `json:"visualParameters"`
}

// SceneStats aggregates the active snapshot for the renderer's HUD.
type SceneStats struct {
	TotalRepos   int `json:"totalRepos"`
	TotalCommits int `json:"totalCommits"`
	TotalStars   int `json:"totalStars"`
	TotalForks   int `json:"totalForks"`
}

// Scene is the full output contract: an ordered object list, the central
// body radius, aggregate stats, and the rate-limit state observed while
// acquiring the data.
type Scene struct {
	Objects   []SceneObject   `json:"objects"`
	SunRadius float64         `json:"sunRadius"`
	Stats     SceneStats      `json:"stats"`
	Snapshot  SnapshotContext `json:"snapshot"`
	RateLimit RateLimit       `json:"rateLimit"`
}
