// Package bulkimport turns an uploaded spreadsheet into task records: it
// resolves header aliases, validates every row independently and reports
// per-row failures without aborting the batch.
package bulkimport

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mansoorahamedsaaho/Validiant-Testing/internal/geo"
)

// Canonical field names a row can carry.
const (
	fieldCaseID     = "case_id"
	fieldPostalCode = "postal_code"
	fieldMapURL     = "map_url"
	fieldClientName = "client_name"
	fieldLatitude   = "latitude"
	fieldLongitude  = "longitude"
	fieldNotes      = "notes"
)

// headerAliases maps a normalized (lowercased, trimmed) header cell to the
// canonical field it feeds. Spreadsheets arrive from several hands, so each
// field accepts the spellings seen in the wild.
var headerAliases = map[string]string{
	"caseid":      fieldCaseID,
	"case id":     fieldCaseID,
	"title":       fieldCaseID,
	"pincode":     fieldPostalCode,
	"pin code":    fieldPostalCode,
	"postal code": fieldPostalCode,
	"postalcode":  fieldPostalCode,
	"mapurl":      fieldMapURL,
	"map url":     fieldMapURL,
	"maplink":     fieldMapURL,
	"map link":    fieldMapURL,
	"clientname":  fieldClientName,
	"client name": fieldClientName,
	"client":      fieldClientName,
	"latitude":    fieldLatitude,
	"lat":         fieldLatitude,
	"longitude":   fieldLongitude,
	"lng":         fieldLongitude,
	"long":        fieldLongitude,
	"notes":       fieldNotes,
	"note":        fieldNotes,
	"remarks":     fieldNotes,
}

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

// Row is one imported record keyed by canonical field name, values trimmed.
type Row map[string]string

// Payload is a normalized task-creation payload built from a valid row.
// Bulk import never auto-assigns: the assignee is always absent and the task
// is created Unassigned.
type Payload struct {
	Title      string
	ClientName string
	PostalCode string
	MapURL     string
	Latitude   *float64
	Longitude  *float64
	Notes      string
}

// ResolveColumns maps each spreadsheet column index to the canonical field it
// carries, based on the header row. Unknown headers are ignored.
func ResolveColumns(header []string) map[int]string {
	columns := make(map[int]string, len(header))
	for i, cell := range header {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(cell))]; ok {
			columns[i] = field
		}
	}

	return columns
}

// RowFromRecord builds a Row from one spreadsheet record using the resolved
// column mapping. Cells beyond the record's length read as empty.
func RowFromRecord(columns map[int]string, record []string) Row {
	row := make(Row, len(columns))
	for idx, field := range columns {
		if idx < len(record) {
			row[field] = strings.TrimSpace(record[idx])
		}
	}

	return row
}

// ValidateRow validates a single imported record and produces a normalized
// task-creation payload or a rejection reason. Rules are evaluated in order
// and the first failure wins; rows are fully independent of each other.
func ValidateRow(row Row) (Payload, error) {
	title := row[fieldCaseID]
	if title == "" {
		return Payload{}, errors.New("CaseID/Title is required")
	}

	pincode := row[fieldPostalCode]
	if pincode == "" {
		return Payload{}, errors.New("Pincode is required")
	}
	if !pincodePattern.MatchString(pincode) {
		return Payload{}, fmt.Errorf("Pincode must be exactly 6 digits (got: %s)", pincode)
	}

	payload := Payload{
		Title:      title,
		ClientName: row[fieldClientName],
		PostalCode: pincode,
		MapURL:     row[fieldMapURL],
		Notes:      row[fieldNotes],
	}

	var err error
	if payload.Latitude, err = parseCoordinate(row[fieldLatitude], "Latitude", 90); err != nil {
		return Payload{}, err
	}
	if payload.Longitude, err = parseCoordinate(row[fieldLongitude], "Longitude", 180); err != nil {
		return Payload{}, err
	}

	// Directly supplied coordinates take precedence; the map link is only
	// consulted to fill the gap.
	if payload.MapURL != "" && (payload.Latitude == nil || payload.Longitude == nil) {
		if lat, lng, ok := geo.FromMapURL(payload.MapURL); ok {
			payload.Latitude, payload.Longitude = &lat, &lng
		}
	}

	return payload, nil
}

func parseCoordinate(raw, name string, bound float64) (*float64, error) {
	if raw == "" {
		return nil, nil //nolint:nilnil // absent coordinate is a valid outcome
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number (got: %s)", name, raw)
	}
	if value < -bound || value > bound {
		return nil, fmt.Errorf("%s must be within [-%g, %g] (got: %s)", name, bound, bound, raw)
	}

	return &value, nil
}
