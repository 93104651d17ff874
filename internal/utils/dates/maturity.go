// Package dates holds calendar arithmetic for loan terms.
package dates

import "time"

// MaturityDate advances start by the given number of calendar months, clamping
// the day-of-month to the last valid day of the target month when the original
// day does not exist there: Jan 31 + 1 month is Feb 28 (Feb 29 in a leap
// year), never Mar 3. It is computed once at loan creation and never
// recomputed afterwards.
func MaturityDate(start time.Time, months int) time.Time {
	year := start.Year()
	month := int(start.Month()) - 1 + months
	year += month / 12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}
	targetMonth := time.Month(month + 1)

	day := start.Day()
	if last := daysIn(year, targetMonth); day > last {
		day = last
	}

	return time.Date(year, targetMonth, day, 0, 0, 0, 0, start.Location())
}

// daysIn returns the number of days in the given month. Day 0 of the next
// month normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
