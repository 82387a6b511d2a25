package main

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// AdmissionSnapshot is one admissions fact row in the optional Parquet
// snapshot, for ad-hoc analytical queries outside the database. Dates are
// stored as text in the layout the source uses; surrogate ids dictionary-
// encode to near nothing.
type AdmissionSnapshot struct {
	AdmissionID     int32   `parquet:"admission_id"`
	PersonID        int32   `parquet:"person_id"`
	DoctorID        int32   `parquet:"doctor_id"`
	ConditionID     int32   `parquet:"condition_id"`
	InsuranceID     int32   `parquet:"insurance_id"`
	AdmissionTypeID int32   `parquet:"admission_type_id"`
	TestResultID    int32   `parquet:"test_result_id"`
	DateOfAdmission string  `parquet:"date_of_admission"`
	DischargeDate   string  `parquet:"discharge_date"`
	BillingAmount   float64 `parquet:"billing_amount"`
	RoomNumber      int32   `parquet:"room_number"`
	Medication      string  `parquet:"medication"`
}

const snapshotDateLayout = "2006-01-02 15:04:05"

// WriteSnapshot writes the admissions table to a Parquet file.
func WriteSnapshot(path string, t *Tables) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}

	writer := parquet.NewGenericWriter[AdmissionSnapshot](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.CreatedBy("admissionsetl", "1.0", ""),
	)

	const batchSize = 10000
	buf := make([]AdmissionSnapshot, 0, batchSize)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if _, err := writer.Write(buf); err != nil {
			return fmt.Errorf("write snapshot rows: %w", err)
		}
		buf = buf[:0]
		return nil
	}

	for _, a := range t.Admissions {
		buf = append(buf, AdmissionSnapshot{
			AdmissionID:     a.AdmissionID,
			PersonID:        a.PersonID,
			DoctorID:        a.DoctorID,
			ConditionID:     a.ConditionID,
			InsuranceID:     a.InsuranceID,
			AdmissionTypeID: a.AdmissionTypeID,
			TestResultID:    a.TestResultID,
			DateOfAdmission: a.DateOfAdmission.Format(snapshotDateLayout),
			DischargeDate:   a.DischargeDate.Format(snapshotDateLayout),
			BillingAmount:   a.BillingAmount,
			RoomNumber:      int32(a.RoomNumber),
			Medication:      a.Medication,
		})
		if len(buf) == batchSize {
			if err := flush(); err != nil {
				file.Close()
				return err
			}
		}
	}
	if err := flush(); err != nil {
		file.Close()
		return err
	}

	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("close snapshot writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}

	log.Infof("snapshot: %d admission(s) written to %s", len(t.Admissions), path)
	return nil
}
