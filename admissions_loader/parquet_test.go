package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestWriteSnapshot(t *testing.T) {
	tables, err := Transform(cleanRows(t, baseRows()...))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	path := filepath.Join(t.TempDir(), "admissions.parquet")
	if err := WriteSnapshot(path, tables); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[AdmissionSnapshot](f)
	defer reader.Close()

	if got := reader.NumRows(); got != int64(len(tables.Admissions)) {
		t.Fatalf("snapshot rows: got %d, want %d", got, len(tables.Admissions))
	}

	buf := make([]AdmissionSnapshot, len(tables.Admissions))
	n, err := reader.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read snapshot: %v", err)
	}
	if n != len(tables.Admissions) {
		t.Fatalf("read %d rows, want %d", n, len(tables.Admissions))
	}

	first := buf[0]
	want := tables.Admissions[0]
	if first.AdmissionID != want.AdmissionID || first.PersonID != want.PersonID {
		t.Errorf("first row ids: got %d/%d, want %d/%d",
			first.AdmissionID, first.PersonID, want.AdmissionID, want.PersonID)
	}
	if first.DateOfAdmission != want.DateOfAdmission.Format(snapshotDateLayout) {
		t.Errorf("date_of_admission: got %q, want %q",
			first.DateOfAdmission, want.DateOfAdmission.Format(snapshotDateLayout))
	}
	if first.BillingAmount != want.BillingAmount {
		t.Errorf("billing_amount: got %v, want %v", first.BillingAmount, want.BillingAmount)
	}
}
