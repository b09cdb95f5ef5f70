package format

// Row markers for the scene table. Renderers apply their own styling.
const (
	// ForkIcon marks repositories that are forks of another repository.
	ForkIcon = "⑂" // ⑂

	// RingIcon marks bodies that carry a ring system (3+ branches).
	RingIcon = "◌" // ◌

	// ActiveIcon marks repositories with commits in the last 30 days.
	ActiveIcon = "★" // ★

	// EstimateSuffix flags counts that are estimates rather than
	// measured values.
	EstimateSuffix = "~"
)

// CountSuffix returns the marker appended to count columns: "~" when
// the counts are estimated, empty once they have been measured.
func CountSuffix(measured bool) string {
	if measured {
		return ""
	}
	return EstimateSuffix
}
