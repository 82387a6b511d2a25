package main

import "time"

// Canonical source columns after header normalization. Every stage refers to
// these names; the transformer refuses to run when any of them is missing
// from the cleaned dataset (a schema problem, not a data-quality problem).
const (
	colName              = "name"
	colAge               = "age"
	colGender            = "gender"
	colBloodType         = "blood_type"
	colMedicalCondition  = "medical_condition"
	colDateOfAdmission   = "date_of_admission"
	colDoctor            = "doctor"
	colHospital          = "hospital"
	colInsuranceProvider = "insurance_provider"
	colBillingAmount     = "billing_amount"
	colRoomNumber        = "room_number"
	colAdmissionType     = "admission_type"
	colDischargeDate     = "discharge_date"
	colMedication        = "medication"
	colTestResults       = "test_results"
)

// sourceColumns lists the 15 canonical columns in admission-schema order.
var sourceColumns = []string{
	colName,
	colAge,
	colGender,
	colBloodType,
	colMedicalCondition,
	colDateOfAdmission,
	colDoctor,
	colHospital,
	colInsuranceProvider,
	colBillingAmount,
	colRoomNumber,
	colAdmissionType,
	colDischargeDate,
	colMedication,
	colTestResults,
}

// requiredOutputFields lists the 11 fields an admission must resolve, in the
// canonical order used for reject reporting (missing_columns).
var requiredOutputFields = []string{
	"person_id",
	"doctor_id",
	"condition_id",
	"insurance_id",
	"admission_type_id",
	"test_result_id",
	"date_of_admission",
	"discharge_date",
	"billing_amount",
	"room_number",
	"medication",
}

// Valid test result labels, post-lowercasing.
var validTestResults = map[string]bool{
	"inconclusive": true,
	"normal":       true,
	"abnormal":     true,
}

// RawTable is a source file read verbatim: an ordered header row plus data
// rows of untyped text cells. Short rows are padded to the header width by
// the readers, so len(Rows[i]) == len(Headers) always holds.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// RawRow preserves the 15 descriptive columns exactly as they appeared in
// the source. Rejected rows carry these original values, not the cleaned or
// resolved ones, so users can see what was actually in the file.
type RawRow struct {
	Name              string
	Age               string
	Gender            string
	BloodType         string
	MedicalCondition  string
	DateOfAdmission   string
	Doctor            string
	Hospital          string
	InsuranceProvider string
	BillingAmount     string
	RoomNumber        string
	AdmissionType     string
	DischargeDate     string
	Medication        string
	TestResults       string
}

// Record is one cleaned source row. Nil means the value was absent in the
// source or was downgraded by validation; no sentinel values are used.
type Record struct {
	Name              *string
	Age               *int
	Gender            *string
	BloodType         *string
	MedicalCondition  *string
	DateOfAdmission   *time.Time
	Doctor            *string
	Hospital          *string
	InsuranceProvider *string
	BillingAmount     *float64
	RoomNumber        *int
	AdmissionType     *string
	DischargeDate     *time.Time
	Medication        *string
	TestResults       *string

	Raw RawRow
}

// Dataset is the cleaner's output: one Record per source row (never fewer),
// the set of canonical columns present in the source schema, and per-column
// counts of values downgraded to absent.
type Dataset struct {
	Records    []Record
	Columns    map[string]bool
	Downgraded map[string]int
}

// Dimension and fact rows. Surrogate ids are 1-based, contiguous, assigned
// in first-occurrence order.

type Person struct {
	PersonID  int32
	Name      string
	Age       int
	Gender    string
	BloodType string
}

type Hospital struct {
	HospitalID   int32
	HospitalName string
}

type Doctor struct {
	DoctorID   int32
	DoctorName string
	// HospitalID comes from a left join of the deduplicated doctor rows
	// against the hospitals dimension. Nil is possible if the hospital name
	// did not survive dimension building.
	HospitalID   *int32
	HospitalName string
}

type Condition struct {
	ConditionID   int32
	ConditionName string
}

type InsuranceProvider struct {
	InsuranceID  int32
	ProviderName string
}

type TestResult struct {
	TestResultID int32
	ResultLabel  string
}

type AdmissionType struct {
	AdmissionTypeID int32
	TypeName        string
}

type Admission struct {
	AdmissionID     int32
	PersonID        int32
	DoctorID        int32
	ConditionID     int32
	InsuranceID     int32
	AdmissionTypeID int32
	TestResultID    int32
	DateOfAdmission time.Time
	DischargeDate   time.Time
	BillingAmount   float64
	RoomNumber      int
	Medication      string
}

// RejectedRow is one source row that could not become an admission.
// MissingColumns is the comma-joined list of required output fields that
// were absent, in requiredOutputFields order.
type RejectedRow struct {
	Raw            RawRow
	MissingColumns string
}

// Tables is the transformer's nine-way output.
type Tables struct {
	People         []Person
	Doctors        []Doctor
	Hospitals      []Hospital
	Conditions     []Condition
	Insurance      []InsuranceProvider
	TestResults    []TestResult
	AdmissionTypes []AdmissionType
	Admissions     []Admission
	Rejects        []RejectedRow
}
