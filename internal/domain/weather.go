package domain

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Station is a weather station known to the pipeline. Match is the text
// searched for in file names; it defaults to Label.
type Station struct {
	Label string `yaml:"label"`
	Match string `yaml:"match"`
}

// Key is the station suffix used in panel column names.
func (s Station) Key() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s.Label)), " ", "_")
}

func (s Station) pattern() string {
	if s.Match != "" {
		return strings.ToUpper(s.Match)
	}
	return strings.ToUpper(s.Label)
}

// StationTable lists the stations in match priority order.
type StationTable []Station

// ParseStationTable reads a comma-separated list of labels. An entry may
// carry its own file-name match as "Label=MATCH".
func ParseStationTable(s string) StationTable {
	var out StationTable
	for _, part := range strings.Split(s, ",") {
		label, match, _ := strings.Cut(strings.TrimSpace(part), "=")
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		out = append(out, Station{Label: label, Match: strings.TrimSpace(match)})
	}
	return out
}

// Resolve identifies the station of a weather file by a case-insensitive
// substring match on its base name.
func (t StationTable) Resolve(path string) (Station, error) {
	name := strings.ToUpper(filepath.Base(path))
	for _, s := range t {
		if strings.Contains(name, s.pattern()) {
			return s, nil
		}
	}
	return Station{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrStationUnresolved)
}

// WeatherColumns holds the header positions of one weather file.
type WeatherColumns struct {
	Date          int
	Time          int
	Precipitation int
	Temperature   int
}

// ResolveWeatherColumns locates the four required columns in a weather file header.
func ResolveWeatherColumns(header []string) (WeatherColumns, error) {
	cols, err := WeatherColumnSet.Resolve(header)
	if err != nil {
		return WeatherColumns{}, err
	}
	return WeatherColumns{
		Date:          cols[colDate],
		Time:          cols[colTime],
		Precipitation: cols[colPrecipitation],
		Temperature:   cols[colTemperature],
	}, nil
}

// HourlyReading is one cleaned row of a weather file.
type HourlyReading struct {
	Time          time.Time
	Precipitation float64
	Temperature   float64
}

// ParseReadingTime combines the date and hour cells of a weather row.
// Dates use '-' or '/' separators; hours are "HHMM", "HHMM UTC" or "HH:MM".
func ParseReadingTime(date, hour string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", strings.ReplaceAll(strings.TrimSpace(date), "/", "-"))
	if err != nil {
		return time.Time{}, false
	}

	h := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(hour), "UTC"))
	var hm time.Time
	if strings.Contains(h, ":") {
		hm, err = time.Parse("15:04", h)
	} else {
		if len(h) == 0 || len(h) > 4 {
			return time.Time{}, false
		}
		hm, err = time.Parse("1504", strings.Repeat("0", 4-len(h))+h)
	}
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute), true
}

// CleanHourly turns the rows of one weather file into chronologically sorted
// readings. Rows with an unparsable timestamp are dropped. The precipitation
// and temperature policies are applied after sorting so carry-forward follows
// the file's chronological order.
func CleanHourly(t RawTable, cols WeatherColumns, policies FillPolicyTable) ([]HourlyReading, LoadStats) {
	stats := LoadStats{Rows: len(t.Rows)}
	readings := make([]HourlyReading, 0, len(t.Rows))
	for i := range t.Rows {
		ts, ok := ParseReadingTime(t.Cell(i, cols.Date), t.Cell(i, cols.Time))
		if !ok {
			stats.Invalid++
			continue
		}
		readings = append(readings, HourlyReading{
			Time:          ts,
			Precipitation: parseDecimalOrMissing(t.Cell(i, cols.Precipitation)),
			Temperature:   parseDecimalOrMissing(t.Cell(i, cols.Temperature)),
		})
	}
	slices.SortStableFunc(readings, func(a, b HourlyReading) int { return a.Time.Compare(b.Time) })

	precip := make([]float64, len(readings))
	temp := make([]float64, len(readings))
	for i, r := range readings {
		precip[i] = r.Precipitation
		temp[i] = r.Temperature
	}
	if p, ok := policies.Lookup(VariablePrecipitation); ok {
		precip = p.Apply(precip)
	}
	if p, ok := policies.Lookup(VariableTemperature); ok {
		temp = p.Apply(temp)
	}
	for i := range readings {
		readings[i].Precipitation = precip[i]
		readings[i].Temperature = temp[i]
	}

	stats.Kept = len(readings)
	return readings, stats
}

// StationDailyRecord is the daily aggregate of one station.
type StationDailyRecord struct {
	Day           time.Time
	Station       string
	Precipitation float64
	Temperature   float64
}

// AggregateDaily groups sorted readings by calendar day using the daily
// aggregation of each variable's policy.
func AggregateDaily(station string, readings []HourlyReading, policies FillPolicyTable) []StationDailyRecord {
	precipPolicy, _ := policies.Lookup(VariablePrecipitation)
	tempPolicy, _ := policies.Lookup(VariableTemperature)

	var out []StationDailyRecord
	var precip, temp []float64
	flush := func(day time.Time) {
		out = append(out, StationDailyRecord{
			Day:           day,
			Station:       station,
			Precipitation: precipPolicy.Daily.Reduce(precip),
			Temperature:   tempPolicy.Daily.Reduce(temp),
		})
		precip, temp = precip[:0], temp[:0]
	}

	for i, r := range readings {
		day := Day(r.Time)
		if i > 0 && !day.Equal(Day(readings[i-1].Time)) {
			flush(Day(readings[i-1].Time))
		}
		precip = append(precip, r.Precipitation)
		temp = append(temp, r.Temperature)
	}
	if len(readings) > 0 {
		flush(Day(readings[len(readings)-1].Time))
	}
	return out
}

// PivotStations reshapes daily records of all stations into one frame with
// precipitation_<station> and temperature_<station> columns over the union of
// days. A station without a record for a day is missing on that day. Several
// records for the same (day, station) are averaged.
func PivotStations(records []StationDailyRecord) *Frame {
	type cell struct{ precip, temp []float64 }
	cells := make(map[string]map[time.Time]*cell)
	daySet := make(map[time.Time]struct{})
	for _, r := range records {
		byDay, ok := cells[r.Station]
		if !ok {
			byDay = make(map[time.Time]*cell)
			cells[r.Station] = byDay
		}
		c, ok := byDay[r.Day]
		if !ok {
			c = &cell{}
			byDay[r.Day] = c
		}
		c.precip = append(c.precip, r.Precipitation)
		c.temp = append(c.temp, r.Temperature)
		daySet[r.Day] = struct{}{}
	}

	index := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		index = append(index, d)
	}
	slices.SortFunc(index, func(a, b time.Time) int { return a.Compare(b) })

	stations := make([]string, 0, len(cells))
	for s := range cells {
		stations = append(stations, s)
	}
	slices.Sort(stations)

	frame := NewFrame(index)
	for _, variable := range []string{VariablePrecipitation, VariableTemperature} {
		for _, s := range stations {
			values := make([]float64, len(index))
			for i, d := range index {
				c, ok := cells[s][d]
				switch {
				case !ok:
					values[i] = Missing()
				case variable == VariablePrecipitation:
					values[i] = AggregateMean.Reduce(c.precip)
				default:
					values[i] = AggregateMean.Reduce(c.temp)
				}
			}
			_ = frame.SetColumn(StationColumn(variable, s), values)
		}
	}
	return frame
}
