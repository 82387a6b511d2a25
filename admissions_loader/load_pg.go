package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table creation statements, in foreign-key dependency order.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS people (
		person_id   INT PRIMARY KEY,
		name        TEXT NOT NULL,
		age         INT,
		gender      TEXT NOT NULL,
		blood_type  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hospitals (
		hospital_id   INT PRIMARY KEY,
		hospital_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		doctor_id     INT PRIMARY KEY,
		doctor_name   TEXT NOT NULL,
		hospital_id   INT NOT NULL REFERENCES hospitals(hospital_id)
	)`,
	`CREATE TABLE IF NOT EXISTS conditions (
		condition_id   INT PRIMARY KEY,
		condition_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS insurance (
		insurance_id  INT PRIMARY KEY,
		provider_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		test_result_id INT PRIMARY KEY,
		result_label   TEXT NOT NULL CHECK (result_label IN ('inconclusive', 'normal', 'abnormal'))
	)`,
	`CREATE TABLE IF NOT EXISTS admission_types (
		admission_type_id INT PRIMARY KEY,
		type_name         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admission_data (
		admission_id       INT PRIMARY KEY,
		person_id          INT NOT NULL REFERENCES people(person_id),
		doctor_id          INT NOT NULL REFERENCES doctors(doctor_id),
		condition_id       INT NOT NULL REFERENCES conditions(condition_id),
		insurance_id       INT NOT NULL REFERENCES insurance(insurance_id),
		admission_type_id  INT NOT NULL REFERENCES admission_types(admission_type_id),
		test_result_id     INT NOT NULL REFERENCES test_results(test_result_id),
		date_of_admission  TIMESTAMP,
		discharge_date     TIMESTAMP,
		billing_amount     NUMERIC(12, 2),
		room_number        INT,
		medication         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rejected_rows (
		reject_id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name               TEXT,
		age                TEXT,
		gender             TEXT,
		blood_type         TEXT,
		medical_condition  TEXT,
		date_of_admission  TEXT,
		doctor             TEXT,
		hospital           TEXT,
		insurance_provider TEXT,
		billing_amount     TEXT,
		room_number        TEXT,
		admission_type     TEXT,
		discharge_date     TEXT,
		medication         TEXT,
		test_results       TEXT,
		missing_columns    TEXT NOT NULL
	)`,
}

// LoadPostgres persists the nine transformed tables. Table creation and the
// truncate+insert pass each run in their own transaction; any failure rolls
// the whole load back, so a partial load is never visible.
func LoadPostgres(ctx context.Context, connStr string, t *Tables) error {
	start := time.Now()

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	if err := createTables(ctx, pool); err != nil {
		return err
	}
	if err := loadTables(ctx, pool, t); err != nil {
		return err
	}

	log.Infof("load: %d admission(s), %d reject(s) persisted in %s",
		len(t.Admissions), len(t.Rejects), time.Since(start).Round(time.Millisecond))
	return nil
}

func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range createStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func loadTables(ctx context.Context, pool *pgxpool.Pool, t *Tables) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin load tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `TRUNCATE admission_data,
		doctors,
		hospitals,
		conditions,
		insurance,
		admission_types,
		test_results,
		people,
		rejected_rows
	RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for _, p := range t.People {
		_, err := tx.Exec(ctx, `
			INSERT INTO people (person_id, name, age, gender, blood_type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (person_id) DO UPDATE SET
				name = EXCLUDED.name, age = EXCLUDED.age,
				gender = EXCLUDED.gender, blood_type = EXCLUDED.blood_type`,
			p.PersonID, p.Name, p.Age, p.Gender, p.BloodType)
		if err != nil {
			return fmt.Errorf("upsert person %d: %w", p.PersonID, err)
		}
	}

	for _, h := range t.Hospitals {
		_, err := tx.Exec(ctx, `
			INSERT INTO hospitals (hospital_id, hospital_name)
			VALUES ($1, $2)
			ON CONFLICT (hospital_id) DO UPDATE SET hospital_name = EXCLUDED.hospital_name`,
			h.HospitalID, h.HospitalName)
		if err != nil {
			return fmt.Errorf("upsert hospital %d: %w", h.HospitalID, err)
		}
	}

	for _, d := range t.Doctors {
		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (doctor_id, doctor_name, hospital_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (doctor_id) DO UPDATE SET
				doctor_name = EXCLUDED.doctor_name, hospital_id = EXCLUDED.hospital_id`,
			d.DoctorID, d.DoctorName, d.HospitalID)
		if err != nil {
			return fmt.Errorf("upsert doctor %d: %w", d.DoctorID, err)
		}
	}

	for _, c := range t.Conditions {
		_, err := tx.Exec(ctx, `
			INSERT INTO conditions (condition_id, condition_name)
			VALUES ($1, $2)
			ON CONFLICT (condition_id) DO UPDATE SET condition_name = EXCLUDED.condition_name`,
			c.ConditionID, c.ConditionName)
		if err != nil {
			return fmt.Errorf("upsert condition %d: %w", c.ConditionID, err)
		}
	}

	for _, ins := range t.Insurance {
		_, err := tx.Exec(ctx, `
			INSERT INTO insurance (insurance_id, provider_name)
			VALUES ($1, $2)
			ON CONFLICT (insurance_id) DO UPDATE SET provider_name = EXCLUDED.provider_name`,
			ins.InsuranceID, ins.ProviderName)
		if err != nil {
			return fmt.Errorf("upsert insurance %d: %w", ins.InsuranceID, err)
		}
	}

	for _, tr := range t.TestResults {
		_, err := tx.Exec(ctx, `
			INSERT INTO test_results (test_result_id, result_label)
			VALUES ($1, $2)
			ON CONFLICT (test_result_id) DO UPDATE SET result_label = EXCLUDED.result_label`,
			tr.TestResultID, tr.ResultLabel)
		if err != nil {
			return fmt.Errorf("upsert test result %d: %w", tr.TestResultID, err)
		}
	}

	for _, at := range t.AdmissionTypes {
		_, err := tx.Exec(ctx, `
			INSERT INTO admission_types (admission_type_id, type_name)
			VALUES ($1, $2)
			ON CONFLICT (admission_type_id) DO UPDATE SET type_name = EXCLUDED.type_name`,
			at.AdmissionTypeID, at.TypeName)
		if err != nil {
			return fmt.Errorf("upsert admission type %d: %w", at.AdmissionTypeID, err)
		}
	}

	for _, a := range t.Admissions {
		_, err := tx.Exec(ctx, `
			INSERT INTO admission_data (
				admission_id, person_id, doctor_id, condition_id, insurance_id,
				admission_type_id, test_result_id, date_of_admission,
				discharge_date, billing_amount, room_number, medication
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (admission_id) DO UPDATE SET
				person_id = EXCLUDED.person_id,
				doctor_id = EXCLUDED.doctor_id,
				condition_id = EXCLUDED.condition_id,
				insurance_id = EXCLUDED.insurance_id,
				admission_type_id = EXCLUDED.admission_type_id,
				test_result_id = EXCLUDED.test_result_id,
				date_of_admission = EXCLUDED.date_of_admission,
				discharge_date = EXCLUDED.discharge_date,
				billing_amount = EXCLUDED.billing_amount,
				room_number = EXCLUDED.room_number,
				medication = EXCLUDED.medication`,
			a.AdmissionID, a.PersonID, a.DoctorID, a.ConditionID, a.InsuranceID,
			a.AdmissionTypeID, a.TestResultID, a.DateOfAdmission,
			a.DischargeDate, a.BillingAmount, a.RoomNumber, a.Medication)
		if err != nil {
			return fmt.Errorf("upsert admission %d: %w", a.AdmissionID, err)
		}
	}

	// Rejects are append-only; bulk COPY is the cheapest way in.
	if len(t.Rejects) > 0 {
		rows := make([][]any, 0, len(t.Rejects))
		for _, r := range t.Rejects {
			rows = append(rows, []any{
				r.Raw.Name, r.Raw.Age, r.Raw.Gender, r.Raw.BloodType,
				r.Raw.MedicalCondition, r.Raw.DateOfAdmission, r.Raw.Doctor,
				r.Raw.Hospital, r.Raw.InsuranceProvider, r.Raw.BillingAmount,
				r.Raw.RoomNumber, r.Raw.AdmissionType, r.Raw.DischargeDate,
				r.Raw.Medication, r.Raw.TestResults, r.MissingColumns,
			})
		}
		copied, err := tx.CopyFrom(ctx,
			pgx.Identifier{"rejected_rows"},
			[]string{
				"name", "age", "gender", "blood_type", "medical_condition",
				"date_of_admission", "doctor", "hospital", "insurance_provider",
				"billing_amount", "room_number", "admission_type",
				"discharge_date", "medication", "test_results", "missing_columns",
			},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy rejected_rows: %w", err)
		}
		if copied != int64(len(t.Rejects)) {
			return fmt.Errorf("copy rejected_rows: wrote %d of %d rows", copied, len(t.Rejects))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit load tx: %w", err)
	}
	return nil
}
