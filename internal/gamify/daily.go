package gamify

// DailyEventKey selects the care event for a day deterministically:
// catalog[|dayIndex| mod len]. Every state sees the same event on the same
// calendar day, and the choice is reproducible for support and debugging.
func DailyEventKey(dayIndex int, catalog []string) string {
	if len(catalog) == 0 {
		return ""
	}
	if dayIndex < 0 {
		dayIndex = -dayIndex
	}
	return catalog[dayIndex%len(catalog)]
}
