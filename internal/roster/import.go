// Package roster reads and writes the lead CSV contract: import of
// subjects to enrich, export of settled batch results.
package roster

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/prospect-cli/internal/model"
)

// headerSynonyms maps recognized column names (lowercased) to
// canonical field keys. Import tolerates the common variants seen in
// exported lead lists.
var headerSynonyms = map[string]string{
	"doctor name":   "name",
	"name":          "name",
	"doctor":        "name",
	"provider name": "name",
	"practice":      "practice",
	"practice name": "practice",
	"organization":  "practice",
	"specialty":     "specialty",
	"speciality":    "specialty",
	"location":      "location",
	"city":          "location",
	"email":         "email",
	"email address": "email",
	"phone":         "phone",
	"phone number":  "phone",
	"telephone":     "phone",
	"website":       "website",
	"url":           "website",
	"web site":      "website",
	"notes":         "notes",
	"note":          "notes",
}

// ImportCSV reads subjects from a lead CSV. Rows without a name value
// are skipped. Each imported subject gets a generated ID.
func ImportCSV(path string) ([]model.Subject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "roster: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "roster: read csv")
	}
	if len(records) < 2 {
		return nil, eris.New("roster: csv has no data rows")
	}

	colIdx := make(map[string]int)
	for i, col := range records[0] {
		key, ok := headerSynonyms[strings.ToLower(strings.TrimSpace(col))]
		if !ok {
			continue
		}
		if _, exists := colIdx[key]; !exists {
			colIdx[key] = i
		}
	}
	if _, ok := colIdx["name"]; !ok {
		return nil, eris.New("roster: no name column recognized in header")
	}

	var subjects []model.Subject
	for _, row := range records[1:] {
		name := getCol(row, colIdx, "name")
		if name == "" {
			continue
		}

		subjects = append(subjects, model.Subject{
			ID:        uuid.NewString(),
			Name:      name,
			Practice:  getCol(row, colIdx, "practice"),
			Specialty: getCol(row, colIdx, "specialty"),
			Location:  normalizeLocation(getCol(row, colIdx, "location")),
			Email:     getCol(row, colIdx, "email"),
			Phone:     getCol(row, colIdx, "phone"),
			Website:   getCol(row, colIdx, "website"),
			Notes:     getCol(row, colIdx, "notes"),
		})
	}

	if len(subjects) == 0 {
		return nil, eris.New("roster: no valid subjects found in csv")
	}
	return subjects, nil
}

// getCol safely retrieves a column value from a CSV row.
func getCol(row []string, colIdx map[string]int, key string) string {
	idx, ok := colIdx[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var titleCaser = cases.Title(language.AmericanEnglish)

// normalizeLocation fixes shouty exports ("SALT LAKE CITY, UT" becomes
// "Salt Lake City, UT"). State abbreviations after a comma are kept
// uppercase.
func normalizeLocation(loc string) string {
	if loc == "" || loc != strings.ToUpper(loc) {
		return loc
	}
	city, state, found := strings.Cut(loc, ",")
	city = titleCaser.String(strings.ToLower(strings.TrimSpace(city)))
	if !found {
		return city
	}
	return city + ", " + strings.TrimSpace(state)
}
