package metalsim

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// DefaultInflationSeries is the INSEE series id of the French yearly
// consumer price index, the default source for the inflation table.
const DefaultInflationSeries = "001763852"

const inseeSeriesURL = "https://bdm.insee.fr/series/%s/csv?lang=fr&ordre=antechronologique&transposition=donneescolonne&revision=sansrevisions"

// FetchInflation downloads a yearly series from the INSEE statistics
// bank and returns it as an inflation table. Index-form values (above
// 50) are converted the same way LoadInflation converts them. Like
// FetchSpot, it is a CLI convenience; the simulation never touches the
// network.
func FetchInflation(client *http.Client, idBank string) (InflationTable, error) {
	if client == nil {
		client = new(http.Client)
	}
	resp, err := client.Get(fmt.Sprintf(inseeSeriesURL, idBank))
	if err != nil {
		return nil, fmt.Errorf("failed to download INSEE series %s: %w", idBank, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download INSEE series %s: received status %s", idBank, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read INSEE response: %w", err)
	}
	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive from INSEE response: %w", err)
	}

	var foundFiles []string
	for _, f := range zipReader.File {
		foundFiles = append(foundFiles, f.Name)
		if f.Name != "valeurs_annuelles.csv" {
			continue
		}
		csvFile, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q from zip archive: %w", f.Name, err)
		}
		defer csvFile.Close()
		return parseInseeYearly(csvFile)
	}
	return nil, fmt.Errorf("no yearly values file in the zip for series %s (found: %s)", idBank, strings.Join(foundFiles, ", "))
}

// parseInseeYearly reads the INSEE yearly CSV format: a 4-line header
// (label, id, last update, column names) then year;value rows.
func parseInseeYearly(r io.Reader) (InflationTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read INSEE csv: %w", err)
	}
	if len(records) < 5 {
		return nil, fmt.Errorf("not enough records in INSEE csv to parse the series")
	}

	table := make(InflationTable)
	for _, record := range records[4:] {
		if len(record) < 2 || record[1] == "" {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q in INSEE csv: %w", record[0], err)
		}
		value, err := strconv.ParseFloat(strings.Replace(record[1], ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for year %d: %w", record[1], year, err)
		}
		if value > 50 {
			value -= 100 // index form
		}
		table[year] = Percent(value)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("INSEE series contains no yearly values")
	}
	return table, nil
}
