package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn indicates the cleaned dataset's schema lacks a canonical
// source column. This is a misconfigured pipeline, not bad data, and aborts
// the run instead of flowing into the reject table.
var ErrMissingColumn = errors.New("missing required column")

// personKey is the natural key of the people dimension.
type personKey struct {
	name      string
	age       int
	gender    string
	bloodType string
}

// doctorKey is the natural key of the doctors dimension. The hospital name
// is part of the key: the same doctor name at two hospitals is two doctors.
type doctorKey struct {
	doctor   string
	hospital string
}

// Transform builds the seven dimension tables with dense surrogate keys,
// re-resolves every cleaned row against them, and partitions the rows into
// admissions and rejects. Every input row lands in exactly one of the two.
func Transform(ds *Dataset) (*Tables, error) {
	for _, col := range sourceColumns {
		if !ds.Columns[col] {
			return nil, fmt.Errorf("transform: %w: %s", ErrMissingColumn, col)
		}
	}

	t := &Tables{}

	// People: dedup on the full (name, age, gender, blood_type) tuple,
	// skipping rows where any component is absent.
	peopleIDs := make(map[personKey]int32)
	for _, rec := range ds.Records {
		if rec.Name == nil || rec.Age == nil || rec.Gender == nil || rec.BloodType == nil {
			continue
		}
		k := personKey{*rec.Name, *rec.Age, *rec.Gender, *rec.BloodType}
		if _, ok := peopleIDs[k]; ok {
			continue
		}
		id := int32(len(t.People) + 1)
		peopleIDs[k] = id
		t.People = append(t.People, Person{
			PersonID:  id,
			Name:      k.name,
			Age:       k.age,
			Gender:    k.gender,
			BloodType: k.bloodType,
		})
	}

	// Doctors: dedup on (doctor, hospital) before hospital ids exist.
	doctorIDs := make(map[doctorKey]int32)
	for _, rec := range ds.Records {
		if rec.Doctor == nil || rec.Hospital == nil {
			continue
		}
		k := doctorKey{*rec.Doctor, *rec.Hospital}
		if _, ok := doctorIDs[k]; ok {
			continue
		}
		id := int32(len(t.Doctors) + 1)
		doctorIDs[k] = id
		t.Doctors = append(t.Doctors, Doctor{
			DoctorID:     id,
			DoctorName:   k.doctor,
			HospitalName: k.hospital,
		})
	}

	// Hospitals derive from the deduplicated doctor rows, so a hospital only
	// appears when at least one doctor row names it.
	hospitalIDs := make(map[string]int32)
	for _, d := range t.Doctors {
		if _, ok := hospitalIDs[d.HospitalName]; ok {
			continue
		}
		id := int32(len(t.Hospitals) + 1)
		hospitalIDs[d.HospitalName] = id
		t.Hospitals = append(t.Hospitals, Hospital{HospitalID: id, HospitalName: d.HospitalName})
	}

	// Attach hospital ids back onto the doctors (left join by name; a miss
	// leaves the id absent rather than failing).
	for i := range t.Doctors {
		if id, ok := hospitalIDs[t.Doctors[i].HospitalName]; ok {
			hid := id
			t.Doctors[i].HospitalID = &hid
		}
	}

	// Single-column dimensions.
	conditionIDs := make(map[string]int32)
	for _, rec := range ds.Records {
		if rec.MedicalCondition == nil {
			continue
		}
		if _, ok := conditionIDs[*rec.MedicalCondition]; ok {
			continue
		}
		id := int32(len(t.Conditions) + 1)
		conditionIDs[*rec.MedicalCondition] = id
		t.Conditions = append(t.Conditions, Condition{ConditionID: id, ConditionName: *rec.MedicalCondition})
	}

	insuranceIDs := make(map[string]int32)
	for _, rec := range ds.Records {
		if rec.InsuranceProvider == nil {
			continue
		}
		if _, ok := insuranceIDs[*rec.InsuranceProvider]; ok {
			continue
		}
		id := int32(len(t.Insurance) + 1)
		insuranceIDs[*rec.InsuranceProvider] = id
		t.Insurance = append(t.Insurance, InsuranceProvider{InsuranceID: id, ProviderName: *rec.InsuranceProvider})
	}

	admissionTypeIDs := make(map[string]int32)
	for _, rec := range ds.Records {
		if rec.AdmissionType == nil {
			continue
		}
		if _, ok := admissionTypeIDs[*rec.AdmissionType]; ok {
			continue
		}
		id := int32(len(t.AdmissionTypes) + 1)
		admissionTypeIDs[*rec.AdmissionType] = id
		t.AdmissionTypes = append(t.AdmissionTypes, AdmissionType{AdmissionTypeID: id, TypeName: *rec.AdmissionType})
	}

	// Test results: the cleaner already restricted labels to the valid set
	// or absent, so rows excluded here are exactly the invalid/absent ones.
	testResultIDs := make(map[string]int32)
	excludedResults := 0
	for _, rec := range ds.Records {
		if rec.TestResults == nil {
			excludedResults++
			continue
		}
		if _, ok := testResultIDs[*rec.TestResults]; ok {
			continue
		}
		id := int32(len(t.TestResults) + 1)
		testResultIDs[*rec.TestResults] = id
		t.TestResults = append(t.TestResults, TestResult{TestResultID: id, ResultLabel: *rec.TestResults})
	}
	if excludedResults > 0 {
		log.Warnf("transform: %d row(s) without a valid test result label", excludedResults)
	}

	// Re-resolve every cleaned row against the dimensions and partition.
	// A natural key that did not survive dimension building resolves to an
	// absent foreign key, which routes the row into the rejects.
	for _, rec := range ds.Records {
		var personID, doctorID, conditionID, insuranceID, admissionTypeID, testResultID *int32

		if rec.Name != nil && rec.Age != nil && rec.Gender != nil && rec.BloodType != nil {
			if id, ok := peopleIDs[personKey{*rec.Name, *rec.Age, *rec.Gender, *rec.BloodType}]; ok {
				personID = &id
			}
		}
		if rec.Doctor != nil && rec.Hospital != nil {
			if id, ok := doctorIDs[doctorKey{*rec.Doctor, *rec.Hospital}]; ok {
				doctorID = &id
			}
		}
		conditionID = lookup(conditionIDs, rec.MedicalCondition)
		insuranceID = lookup(insuranceIDs, rec.InsuranceProvider)
		admissionTypeID = lookup(admissionTypeIDs, rec.AdmissionType)
		testResultID = lookup(testResultIDs, rec.TestResults)

		var missing []string
		for _, field := range requiredOutputFields {
			absent := false
			switch field {
			case "person_id":
				absent = personID == nil
			case "doctor_id":
				absent = doctorID == nil
			case "condition_id":
				absent = conditionID == nil
			case "insurance_id":
				absent = insuranceID == nil
			case "admission_type_id":
				absent = admissionTypeID == nil
			case "test_result_id":
				absent = testResultID == nil
			case "date_of_admission":
				absent = rec.DateOfAdmission == nil
			case "discharge_date":
				absent = rec.DischargeDate == nil
			case "billing_amount":
				absent = rec.BillingAmount == nil
			case "room_number":
				absent = rec.RoomNumber == nil
			case "medication":
				absent = rec.Medication == nil
			}
			if absent {
				missing = append(missing, field)
			}
		}

		if len(missing) > 0 {
			t.Rejects = append(t.Rejects, RejectedRow{
				Raw:            rec.Raw,
				MissingColumns: strings.Join(missing, ","),
			})
			continue
		}

		t.Admissions = append(t.Admissions, Admission{
			AdmissionID:     int32(len(t.Admissions) + 1),
			PersonID:        *personID,
			DoctorID:        *doctorID,
			ConditionID:     *conditionID,
			InsuranceID:     *insuranceID,
			AdmissionTypeID: *admissionTypeID,
			TestResultID:    *testResultID,
			DateOfAdmission: *rec.DateOfAdmission,
			DischargeDate:   *rec.DischargeDate,
			BillingAmount:   *rec.BillingAmount,
			RoomNumber:      *rec.RoomNumber,
			Medication:      *rec.Medication,
		})
	}

	log.Infof("transform: %d people, %d doctors, %d hospitals, %d conditions, %d insurers, %d test results, %d admission types",
		len(t.People), len(t.Doctors), len(t.Hospitals), len(t.Conditions),
		len(t.Insurance), len(t.TestResults), len(t.AdmissionTypes))
	log.Infof("transform: %d admission(s), %d reject(s) from %d input row(s)",
		len(t.Admissions), len(t.Rejects), len(ds.Records))

	return t, nil
}

// lookup resolves an optional natural key against a dimension map. Absent
// key or no match both yield an absent id.
func lookup(ids map[string]int32, key *string) *int32 {
	if key == nil {
		return nil
	}
	if id, ok := ids[*key]; ok {
		return &id
	}
	return nil
}
