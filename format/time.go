package format

import "time"

// sasEpoch is 1960-01-01 00:00:00 UTC; all file timestamps are seconds since
// this instant stored as IEEE-754 doubles.
var sasEpoch = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)

// FromSASTime converts seconds since the SAS epoch to a time.Time in UTC.
func FromSASTime(seconds float64) time.Time {
	return sasEpoch.Add(time.Duration(seconds * float64(time.Second))).UTC()
}

// ToSASTime converts a time.Time to seconds since the SAS epoch.
func ToSASTime(t time.Time) float64 {
	return t.Sub(sasEpoch).Seconds()
}
