package domain

// LoadStats counts what a loader did with the rows of its source.
type LoadStats struct {
	Rows       int // data rows read
	Kept       int // rows in the resulting series
	Invalid    int // rows whose key (date or year) could not be parsed
	Incomplete int // rows dropped for a missing required value
	Duplicates int // rows rejected because their key was already seen
}
