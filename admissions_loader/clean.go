package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Cleaning never drops rows and never fails on bad data: every value that
// cannot be trimmed, cased, parsed or validated simply becomes absent (nil).
// The only fatal condition is a dataset with no data rows at all.

var titleCaser = cases.Title(language.Und)

// dateLayouts are tried in order; first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// normalizeColumnName lowercases, trims, and replaces internal spaces with
// underscores: "Blood Type" → "blood_type".
func normalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Clean produces a Dataset with normalized schema and validated values from
// a raw table. Data-quality problems downgrade individual values to absent;
// each column is handled independently so a failure in one never affects
// the others.
func Clean(table *RawTable) (*Dataset, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("clean: input has no data rows")
	}

	colIdx := make(map[string]int, len(table.Headers))
	for i, h := range table.Headers {
		norm := normalizeColumnName(h)
		if _, ok := colIdx[norm]; !ok {
			colIdx[norm] = i
		}
	}

	ds := &Dataset{
		Records:    make([]Record, 0, len(table.Rows)),
		Columns:    make(map[string]bool, len(sourceColumns)),
		Downgraded: make(map[string]int),
	}
	for _, col := range sourceColumns {
		if _, ok := colIdx[col]; ok {
			ds.Columns[col] = true
		}
	}

	cell := func(row []string, col string) string {
		if i, ok := colIdx[col]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	for _, row := range table.Rows {
		raw := RawRow{
			Name:              cell(row, colName),
			Age:               cell(row, colAge),
			Gender:            cell(row, colGender),
			BloodType:         cell(row, colBloodType),
			MedicalCondition:  cell(row, colMedicalCondition),
			DateOfAdmission:   cell(row, colDateOfAdmission),
			Doctor:            cell(row, colDoctor),
			Hospital:          cell(row, colHospital),
			InsuranceProvider: cell(row, colInsuranceProvider),
			BillingAmount:     cell(row, colBillingAmount),
			RoomNumber:        cell(row, colRoomNumber),
			AdmissionType:     cell(row, colAdmissionType),
			DischargeDate:     cell(row, colDischargeDate),
			Medication:        cell(row, colMedication),
			TestResults:       cell(row, colTestResults),
		}

		rec := Record{Raw: raw}
		rec.Name = cleanText(raw.Name, titleCase)
		rec.Gender = cleanText(raw.Gender, strings.ToUpper)
		rec.BloodType = cleanText(raw.BloodType, strings.ToUpper)
		rec.MedicalCondition = cleanText(raw.MedicalCondition, titleCase)
		rec.Doctor = cleanText(raw.Doctor, titleCase)
		rec.Hospital = cleanText(raw.Hospital, titleCase)
		rec.InsuranceProvider = cleanText(raw.InsuranceProvider, titleCase)
		rec.AdmissionType = cleanText(raw.AdmissionType, strings.ToLower)
		rec.Medication = cleanText(raw.Medication, nil)

		rec.TestResults = cleanText(raw.TestResults, strings.ToLower)
		if rec.TestResults != nil && !validTestResults[*rec.TestResults] {
			rec.TestResults = nil
			ds.Downgraded[colTestResults]++
		}

		rec.Age = cleanInt(raw.Age, 0, 120, ds.Downgraded, colAge)
		rec.RoomNumber = cleanInt(raw.RoomNumber, 0, 100000, ds.Downgraded, colRoomNumber)
		rec.BillingAmount = cleanAmount(raw.BillingAmount, ds.Downgraded, colBillingAmount)
		rec.DateOfAdmission = cleanDate(raw.DateOfAdmission, ds.Downgraded, colDateOfAdmission)
		rec.DischargeDate = cleanDate(raw.DischargeDate, ds.Downgraded, colDischargeDate)

		ds.Records = append(ds.Records, rec)
	}

	for col, n := range ds.Downgraded {
		log.Warnf("clean: column %s: %d value(s) downgraded to absent", col, n)
	}
	log.Infof("clean: %d rows cleaned", len(ds.Records))

	return ds, nil
}

func titleCase(s string) string {
	return titleCaser.String(s)
}

// cleanText trims the value, converts empty to absent, and applies the
// field's casing rule when one is configured.
func cleanText(s string, casing func(string) string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if casing != nil {
		s = casing(s)
	}
	return &s
}

// cleanInt coerces a text value to an integer within [lo, hi] inclusive.
// Thousands separators are stripped first. Anything unparseable or out of
// range becomes absent and is counted as a downgrade.
func cleanInt(s string, lo, hi int, downgraded map[string]int, col string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		// Values like "30.0" still count as numeric.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			downgraded[col]++
			return nil
		}
		n = int(f)
	}
	if n < lo || n > hi {
		downgraded[col]++
		return nil
	}
	return &n
}

// cleanAmount coerces a monetary text value to a float rounded to 2 decimal
// places. Thousands separators and currency signs are stripped first.
func cleanAmount(s string, downgraded map[string]int, col string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		downgraded[col]++
		return nil
	}
	f = math.Round(f*100) / 100
	return &f
}

// cleanDate parses a calendar date or timestamp using the layout list.
func cleanDate(s string, downgraded map[string]int, col string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	downgraded[col]++
	return nil
}
