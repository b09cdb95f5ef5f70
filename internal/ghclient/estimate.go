package ghclient

// Closed-form placeholders for metrics the list endpoint does not carry.
// They keep the scene renderable before enrichment measures the real
// counts, and they remain in place for repositories the rate budget
// never reaches.

// EstimateCommits estimates a commit count from popularity and age.
func EstimateCommits(stars, forks, ageDays int) int {
	years := float64(ageDays) / 365.0
	est := 20 + float64(stars)*0.5 + float64(forks)*3 + years*40
	if est < 1 {
		est = 1
	}
	return int(est)
}

// EstimateBranches estimates a branch count. Popular and heavily forked
// repositories tend to carry more long-lived branches.
func EstimateBranches(stars, forks int) int {
	est := 1 + forks/5
	if stars > 100 {
		est++
	}
	if est > 8 {
		est = 8
	}
	return est
}
