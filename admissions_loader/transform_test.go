package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// baseRows mirrors a small mixed-quality dataset: two fully valid rows plus
// a third that repeats the first person/doctor but is missing billing, room,
// discharge and medication and carries an invalid test result label.
func baseRows() []map[string]string {
	row3 := map[string]string{
		"Name":               "John Doe",
		"Age":                "30",
		"Gender":             "M",
		"Blood Type":         "O+",
		"Medical Condition":  "Flu",
		"Date of Admission":  "2024-01-03",
		"Doctor":             "Dr. House",
		"Hospital":           "General Hospital",
		"Insurance Provider": "Acme Health",
		"Admission Type":     "Emergency",
		"Test Results":       "unknown",
	}
	row2 := map[string]string{
		"Name":               "Jane Smith",
		"Age":                "40",
		"Gender":             "F",
		"Blood Type":         "A-",
		"Medical Condition":  "Cold",
		"Date of Admission":  "2024-01-02",
		"Doctor":             "Dr. Wilson",
		"Hospital":           "City Clinic",
		"Insurance Provider": "Acme Health",
		"Billing Amount":     "2000.0",
		"Room Number":        "202",
		"Admission Type":     "Planned",
		"Discharge Date":     "2024-01-07",
		"Medication":         "Med B",
		"Test Results":       "abnormal",
	}
	row1 := map[string]string{
		"Name":               "John Doe",
		"Age":                "30",
		"Gender":             "M",
		"Blood Type":         "O+",
		"Medical Condition":  "Flu",
		"Date of Admission":  "2024-01-01",
		"Doctor":             "Dr. House",
		"Hospital":           "General Hospital",
		"Insurance Provider": "Acme Health",
		"Billing Amount":     "1000.0",
		"Room Number":        "101",
		"Admission Type":     "Emergency",
		"Discharge Date":     "2024-01-05",
		"Medication":         "Med A",
		"Test Results":       "normal",
	}
	return []map[string]string{row1, row2, row3}
}

func cleanRows(t *testing.T, rows ...map[string]string) *Dataset {
	t.Helper()
	ds, err := Clean(tableOf(t, fullHeaders, rows...))
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	return ds
}

func TestTransformBuildsDimensionsAndAdmissions(t *testing.T) {
	rows := baseRows()
	tables, err := Transform(cleanRows(t, rows[0], rows[1]))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	sizes := []struct {
		name string
		got  int
		want int
	}{
		{"people", len(tables.People), 2},
		{"doctors", len(tables.Doctors), 2},
		{"hospitals", len(tables.Hospitals), 2},
		{"conditions", len(tables.Conditions), 2},
		{"insurance", len(tables.Insurance), 1},
		{"test_results", len(tables.TestResults), 2},
		{"admission_types", len(tables.AdmissionTypes), 2},
		{"admissions", len(tables.Admissions), 2},
		{"rejects", len(tables.Rejects), 0},
	}
	for _, s := range sizes {
		if s.got != s.want {
			t.Errorf("%s: got %d rows, want %d", s.name, s.got, s.want)
		}
	}

	// Surrogate ids are dense, 1-based, in first-occurrence order.
	for i, p := range tables.People {
		if p.PersonID != int32(i+1) {
			t.Errorf("person %d: id %d, want %d", i, p.PersonID, i+1)
		}
	}
	if tables.People[0].Name != "John Doe" || tables.People[1].Name != "Jane Smith" {
		t.Errorf("people order: got %s, %s", tables.People[0].Name, tables.People[1].Name)
	}
	if tables.Conditions[0].ConditionName != "Flu" || tables.Conditions[1].ConditionName != "Cold" {
		t.Errorf("conditions order: got %s, %s",
			tables.Conditions[0].ConditionName, tables.Conditions[1].ConditionName)
	}

	// Every admission resolves against existing dimension rows.
	for _, a := range tables.Admissions {
		if a.PersonID < 1 || int(a.PersonID) > len(tables.People) {
			t.Errorf("admission %d: person_id %d out of range", a.AdmissionID, a.PersonID)
		}
		if a.DoctorID < 1 || int(a.DoctorID) > len(tables.Doctors) {
			t.Errorf("admission %d: doctor_id %d out of range", a.AdmissionID, a.DoctorID)
		}
		if a.TestResultID < 1 || int(a.TestResultID) > len(tables.TestResults) {
			t.Errorf("admission %d: test_result_id %d out of range", a.AdmissionID, a.TestResultID)
		}
	}
}

func TestTransformRoutesInvalidRowsToRejects(t *testing.T) {
	rows := baseRows()
	ds := cleanRows(t, rows...)
	tables, err := Transform(ds)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if got := len(tables.Admissions) + len(tables.Rejects); got != len(ds.Records) {
		t.Fatalf("admissions (%d) + rejects (%d) = %d, want %d input rows",
			len(tables.Admissions), len(tables.Rejects), got, len(ds.Records))
	}
	if len(tables.Admissions) != 2 || len(tables.Rejects) != 1 {
		t.Fatalf("got %d admissions / %d rejects, want 2 / 1",
			len(tables.Admissions), len(tables.Rejects))
	}

	// The invalid label never reaches the test results dimension.
	for _, tr := range tables.TestResults {
		if tr.ResultLabel == "unknown" {
			t.Error("invalid label 'unknown' appeared in test_results dimension")
		}
	}
	if len(tables.TestResults) != 2 {
		t.Errorf("test_results: got %d rows, want 2", len(tables.TestResults))
	}

	reject := tables.Rejects[0]
	if reject.Raw.Name != "John Doe" {
		t.Errorf("reject carries name %q, want original John Doe", reject.Raw.Name)
	}
	if reject.Raw.TestResults != "unknown" {
		t.Errorf("reject carries test_results %q, want original unknown", reject.Raw.TestResults)
	}

	missing := strings.Split(reject.MissingColumns, ",")
	want := []string{"test_result_id", "discharge_date", "billing_amount", "room_number", "medication"}
	for _, field := range want {
		if !contains(missing, field) {
			t.Errorf("missing_columns lacks %s: %q", field, reject.MissingColumns)
		}
	}
	for _, field := range missing {
		if !contains(requiredOutputFields, field) {
			t.Errorf("missing_columns names %q, not a required output field", field)
		}
	}

	// Canonical field order is preserved in the joined list.
	lastIdx := -1
	for _, field := range missing {
		idx := indexOf(requiredOutputFields, field)
		if idx <= lastIdx {
			t.Errorf("missing_columns out of canonical order: %q", reject.MissingColumns)
			break
		}
		lastIdx = idx
	}
}

func TestTransformDeduplicatesPeople(t *testing.T) {
	rows := baseRows()
	// First and third rows are the same person.
	tables, err := Transform(cleanRows(t, rows...))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(tables.People) != 2 {
		t.Fatalf("people: got %d rows, want 2 (duplicates collapse)", len(tables.People))
	}
	if tables.Admissions[0].PersonID != 1 {
		t.Errorf("first admission person_id: got %d, want 1", tables.Admissions[0].PersonID)
	}
}

func TestTransformDoctorWithoutHospitalIsExcluded(t *testing.T) {
	rows := baseRows()
	noHospital := rows[0]
	delete(noHospital, "Hospital")
	tables, err := Transform(cleanRows(t, noHospital, rows[1]))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	for _, d := range tables.Doctors {
		if d.DoctorName == "Dr. House" {
			t.Error("doctor with absent hospital must not enter the doctors dimension")
		}
	}
	for _, h := range tables.Hospitals {
		if h.HospitalName == "General Hospital" {
			t.Error("hospital only referenced by a dropped doctor row must not appear")
		}
	}

	// The row itself is rejected via the unresolved doctor_id.
	if len(tables.Rejects) != 1 {
		t.Fatalf("got %d rejects, want 1", len(tables.Rejects))
	}
	if !contains(strings.Split(tables.Rejects[0].MissingColumns, ","), "doctor_id") {
		t.Errorf("missing_columns lacks doctor_id: %q", tables.Rejects[0].MissingColumns)
	}

	// Doctors that did survive carry a resolved hospital id.
	for _, d := range tables.Doctors {
		if d.HospitalID == nil {
			t.Errorf("doctor %s: hospital_id unresolved", d.DoctorName)
		}
	}
}

func TestTransformMissingColumnFails(t *testing.T) {
	ds := cleanRows(t, baseRows()[0])
	delete(ds.Columns, colName)

	_, err := Transform(ds)
	if err == nil {
		t.Fatal("expected error for dataset missing the name column")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("got %v, want ErrMissingColumn", err)
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	rows := baseRows()
	first, err := Transform(cleanRows(t, rows...))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	second, err := Transform(cleanRows(t, rows...))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same cleaned input produced different tables")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
