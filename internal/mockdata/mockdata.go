// Package mockdata writes source fixtures in the on-disk formats the loaders
// read: xlsx workbooks and Latin-1 INMET station files. It backs cmd/genmock
// and the package tests.
package mockdata

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// WriteWorkbook saves a single-sheet workbook with a header row.
func WriteWorkbook(path string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	write := func(r int, values []any) error {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
		return nil
	}

	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := write(0, hdr); err != nil {
		return err
	}
	for i, row := range rows {
		if err := write(i+1, row); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// Vintage selects the header layout of an INMET file.
type Vintage int

const (
	// Vintage2018 labels the date "DATA (YYYY-MM-DD)" and writes hours as "HH:MM".
	Vintage2018 Vintage = iota
	// Vintage2019 labels the date "Data" and writes hours as "HHMM UTC".
	Vintage2019
)

// VintageFor returns the layout INMET used for a given year.
func VintageFor(year int) Vintage {
	if year < 2019 {
		return Vintage2018
	}
	return Vintage2019
}

// HourlyRow is one reading of a station file. Values are written verbatim so
// tests can inject sentinels and malformed cells.
type HourlyRow struct {
	Time          time.Time
	Precipitation string
	Temperature   string
}

// StationFile describes one INMET file.
type StationFile struct {
	Station string
	Code    string
	Vintage Vintage
	// OmitTemperature drops the air temperature column from the header and rows.
	OmitTemperature bool
	Rows            []HourlyRow
}

// WriteINMET writes a station file encoded as Latin-1 with the metadata
// preamble, a header row and semicolon-separated readings.
func WriteINMET(path string, sf StationFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(charmap.ISO8859_1.NewEncoder().Writer(f))
	preamble := []string{
		"REGIAO:;CO",
		"UF:;MT",
		"ESTACAO:;" + strings.ToUpper(sf.Station),
		"CODIGO (WMO):;" + sf.Code,
		"LATITUDE:;-11,98222221",
		"LONGITUDE:;-55,56583333",
		"ALTITUDE:;371",
		"DATA DE FUNDACAO:;2006-12-11",
	}
	for _, line := range preamble {
		fmt.Fprintf(bw, "%s\r\n", line)
	}

	dateCol, hourCol := "Data", "Hora UTC"
	if sf.Vintage == Vintage2018 {
		dateCol, hourCol = "DATA (YYYY-MM-DD)", "HORA (UTC)"
	}
	header := []string{
		dateCol, hourCol,
		"PRECIPITAÇÃO TOTAL, HORÁRIO (mm)",
		"PRESSAO ATMOSFERICA AO NIVEL DA ESTACAO, HORARIA (mB)",
	}
	if !sf.OmitTemperature {
		header = append(header, "TEMPERATURA DO AR - BULBO SECO, HORARIA (°C)")
	}
	header = append(header, "UMIDADE RELATIVA DO AR, HORARIA (%)")
	fmt.Fprintf(bw, "%s;\r\n", strings.Join(header, ";"))

	for _, r := range sf.Rows {
		date, hour := r.Time.Format("2006/01/02"), r.Time.Format("1504")+" UTC"
		if sf.Vintage == Vintage2018 {
			date, hour = r.Time.Format("2006-01-02"), r.Time.Format("15:04")
		}
		fields := []string{date, hour, r.Precipitation, "970,1"}
		if !sf.OmitTemperature {
			fields = append(fields, r.Temperature)
		}
		fields = append(fields, "78")
		fmt.Fprintf(bw, "%s;\r\n", strings.Join(fields, ";"))
	}
	return bw.Flush()
}

// StationFileName follows the INMET naming scheme for one station-year.
func StationFileName(station, code string, year int) string {
	return fmt.Sprintf("INMET_CO_MT_%s_%s_01-01-%d_A_31-12-%d.CSV", code, strings.ToUpper(station), year, year)
}

// Decimal formats v with a decimal comma.
func Decimal(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

// Options controls Generate.
type Options struct {
	Start    time.Time
	End      time.Time
	Stations []string
	// SentinelEvery replaces every n-th hourly reading with -9999. Zero disables it.
	SentinelEvery int
}

// Fixture lists the files written by Generate.
type Fixture struct {
	PricePath        string
	SupplyDemandPath string
	RegionalPath     string
	WeatherDir       string
	WeatherFiles     []string
}

var stationCodes = map[string]string{
	"sinop":   "A917",
	"sorriso": "A904",
}

// Generate writes a deterministic fixture set under dir covering [Start, End].
func Generate(dir string, opts Options) (Fixture, error) {
	if opts.End.Before(opts.Start) {
		return Fixture{}, fmt.Errorf("end %s before start %s", opts.End.Format(time.DateOnly), opts.Start.Format(time.DateOnly))
	}
	if len(opts.Stations) == 0 {
		opts.Stations = []string{"Sinop", "Sorriso"}
	}

	fx := Fixture{
		PricePath:        filepath.Join(dir, "price", "real_price_and_us.xlsx"),
		SupplyDemandPath: filepath.Join(dir, "oferta-e-demanda-milho.xlsx"),
		RegionalPath:     filepath.Join(dir, "precos-minimos.xlsx"),
		WeatherDir:       filepath.Join(dir, "data_tempo"),
	}

	if err := WriteWorkbook(fx.PricePath, []string{"data", "preco_brl", "preco_usd"}, priceRows(opts)); err != nil {
		return Fixture{}, fmt.Errorf("price workbook: %w", err)
	}
	if err := WriteWorkbook(fx.SupplyDemandPath, []string{"Safra.Safra", "Produção", "Oferta", "Demanda"}, supplyRows(opts)); err != nil {
		return Fixture{}, fmt.Errorf("supply workbook: %w", err)
	}
	if err := WriteWorkbook(fx.RegionalPath, []string{"Produto", "UF/Regiões amparadas", "Vigência Inicial", "Preço Mínimo"}, regionalRows(opts)); err != nil {
		return Fixture{}, fmt.Errorf("regional workbook: %w", err)
	}

	for si, station := range opts.Stations {
		code, ok := stationCodes[strings.ToLower(station)]
		if !ok {
			code = fmt.Sprintf("A9%02d", 50+si)
		}
		for year := opts.Start.Year(); year <= opts.End.Year(); year++ {
			path := filepath.Join(fx.WeatherDir, StationFileName(station, code, year))
			sf := StationFile{
				Station: station,
				Code:    code,
				Vintage: VintageFor(year),
				Rows:    hourlyRows(opts, year, float64(si)),
			}
			if err := WriteINMET(path, sf); err != nil {
				return Fixture{}, fmt.Errorf("station file %s: %w", path, err)
			}
			fx.WeatherFiles = append(fx.WeatherFiles, path)
		}
	}
	return fx, nil
}

func priceRows(opts Options) [][]any {
	var rows [][]any
	for d := opts.Start; !d.After(opts.End); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days := d.Sub(opts.Start).Hours() / 24
		fx := 4.0 + 0.8*math.Sin(days/365*2*math.Pi)
		usd := round(12.0+1.5*math.Cos(days/180*math.Pi), 2)
		rows = append(rows, []any{d, round(usd*fx, 2), usd})
	}
	return rows
}

func supplyRows(opts Options) [][]any {
	var rows [][]any
	for year := opts.Start.Year() - 1; year <= opts.End.Year(); year++ {
		i := float64(year - 2000)
		offer := 100000 + 2500*i
		demand := 90000 + 2300*i + 1500*math.Sin(i)
		rows = append(rows, []any{
			fmt.Sprintf("%d/%02d", year, (year+1)%100),
			round(offer*0.9, 1),
			round(offer, 1),
			round(demand, 1),
		})
	}
	return rows
}

func regionalRows(opts Options) [][]any {
	regions := []string{"MT", "GO/DF", "PR", "RS", "Nordeste"}
	var rows [][]any
	for year := opts.Start.Year(); year <= opts.End.Year(); year++ {
		for i, region := range regions {
			price := 17.0 + 0.6*float64(year-2015) + float64(i)*1.1
			rows = append(rows, []any{"Milho", region, fmt.Sprintf("JAN-%d", year), Decimal(round(price, 2))})
		}
	}
	return rows
}

func hourlyRows(opts Options, year int, offset float64) []HourlyRow {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 0, 0, 0, time.UTC)
	if from.Before(opts.Start) {
		from = opts.Start
	}
	if end := opts.End.Add(23 * time.Hour); to.After(end) {
		to = end
	}

	var rows []HourlyRow
	n := 0
	for ts := from; !ts.After(to); ts = ts.Add(time.Hour) {
		n++
		doy := float64(ts.YearDay())
		temp := round(25+offset+4*math.Sin(doy/365*2*math.Pi)+3*math.Sin(float64(ts.Hour())/24*2*math.Pi), 1)
		rain := 0.0
		if (ts.YearDay()+ts.Hour())%17 == 0 {
			rain = round(1.2+math.Mod(doy, 7), 1)
		}
		row := HourlyRow{Time: ts, Precipitation: Decimal(rain), Temperature: Decimal(temp)}
		if opts.SentinelEvery > 0 && n%opts.SentinelEvery == 0 {
			row.Precipitation, row.Temperature = "-9999", "-9999"
		}
		rows = append(rows, row)
	}
	return rows
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
