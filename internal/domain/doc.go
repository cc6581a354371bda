// Package domain models the sources of the commodity price panel and the
// pure transformations that clean them.
//
// # Data Sources
//
// Daily prices come from a workbook with one row per trading day and three
// columns: the trade date, the price in local currency (BRL per 60 kg bag) and
// the same price in foreign currency (USD). Annual supply and demand come from
// a workbook keyed by marketing year. Weather comes from hourly station files
// published by INMET (Instituto Nacional de Meteorologia), one CSV per station
// per year.
//
// # Spreadsheet Conventions
//
// Dates:
//
//	Day/month/year text, e.g. "02/01/2020" = 2 January 2020.
//	Workbook date cells arrive as Excel serial numbers (days since 1899-12-30).
//
// Numbers:
//
//	Decimal comma, e.g. "5,20" = 5.20. When both separators appear the dot is
//	a thousands separator: "1.234,56" = 1234.56. Tokens such as "-" or "s/c"
//	(no quote) are treated as missing.
//
// Marketing year:
//
//	"2015/16" spans two calendar years and is keyed by its first year (2015).
//
// Regional minimum price validity:
//
//	"JAN-2015" → 2015.
//
// # INMET Station Files
//
// Layout:
//
//	Latin-1 (ISO-8859-1) encoded, ';' delimited, decimal comma.
//	Eight preamble lines (REGIAO, UF, ESTACAO, CODIGO (WMO), LATITUDE,
//	LONGITUDE, ALTITUDE, DATA DE FUNDACAO) precede the header row.
//
// Header drift across vintages:
//
//	up to 2018: "DATA (YYYY-MM-DD)", "HORA (UTC)"   with times like "00:00"
//	2019 on:    "Data",              "Hora UTC"     with times like "0000 UTC"
//	Dates use '-' in older files and '/' in newer ones.
//	Precipitation: "PRECIPITAÇÃO TOTAL, HORÁRIO (mm)".
//	Air temperature: "TEMPERATURA DO AR - BULBO SECO, HORARIA (°C)".
//
// Columns are located per file by [ColumnResolver] strategies rather than by
// fixed names, see [WeatherColumnSet].
//
// Unknown values:
//
//	-9999 is the INMET sentinel for a missing reading. The value belongs to the
//	upstream sensor network and is configurable rather than assumed.
//
// Missing-value policy is declared per variable in [DefaultFillPolicies]:
//
//	precipitation: sentinel and unparsable readings become 0 (no rain recorded)
//	temperature:   sentinel and unparsable readings carry the last valid reading
//	               of the same file forward, never an aggregate
//	stock_to_use:  annual value carried forward across periods
//
// # Missing Values
//
// Missing numeric values are represented as NaN throughout; see [Missing] and
// [IsMissing].
package domain
