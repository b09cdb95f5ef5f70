package format

import "fmt"

// FormatAge renders a repository age in days as a compact string:
// "12d" under a month, "8mo" under a year, then "3.4y".
func FormatAge(days int) string {
	if days < 0 {
		days = 0
	}
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case days < 365:
		return fmt.Sprintf("%dmo", days/30)
	default:
		return fmt.Sprintf("%.1fy", float64(days)/365.0)
	}
}

// FormatCount renders a count compactly: 950 stays "950", 1200 becomes
// "1.2k", 2500000 becomes "2.5M".
func FormatCount(n int) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1000000:
		return trimZero(fmt.Sprintf("%.1fk", float64(n)/1000.0))
	default:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1000000.0))
	}
}

// FormatSizeKB renders a repository size in KB as "680 KB", "4.2 MB",
// or "1.1 GB".
func FormatSizeKB(kb int) string {
	switch {
	case kb < 1024:
		return fmt.Sprintf("%d KB", kb)
	case kb < 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(kb)/1024.0)
	default:
		return fmt.Sprintf("%.1f GB", float64(kb)/(1024.0*1024.0))
	}
}

// trimZero drops a redundant ".0" before the unit suffix, so "1.0k"
// reads "1k".
func trimZero(s string) string {
	if len(s) < 3 {
		return s
	}
	unit := s[len(s)-1:]
	if s[len(s)-3:len(s)-1] == ".0" {
		return s[:len(s)-3] + unit
	}
	return s
}
