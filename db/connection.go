package db

import (
	"database/sql"
	"fmt"

	"counsellor-matching/config"
	"counsellor-matching/logger"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	var err error
	connStr := config.GetDBConnString()

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	err = DB.Ping()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

func createTables() error {
	profileTable := `
	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		full_name TEXT,
		email TEXT UNIQUE,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'student',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	counsellorTable := `
	CREATE TABLE IF NOT EXISTS counsellors (
		id UUID PRIMARY KEY,
		profile_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
		specialization TEXT NOT NULL DEFAULT '',
		affiliation TEXT,
		fees NUMERIC(10,2) NOT NULL DEFAULT 0,
		experience_years INTEGER,
		is_available BOOLEAN,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	questionnaireTable := `
	CREATE TABLE IF NOT EXISTS questionnaire_responses (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL,
		answers JSONB NOT NULL DEFAULT '{}'::jsonb,
		free_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_questionnaire_student_created
		ON questionnaire_responses (student_id, created_at DESC);`

	bookingTable := `
	CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL,
		counsellor_id UUID NOT NULL REFERENCES counsellors(id) ON DELETE CASCADE,
		appointment_date DATE NOT NULL,
		appointment_time TEXT NOT NULL,
		issue_type TEXT NOT NULL DEFAULT '',
		message TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		session_link TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	paymentTable := `
	CREATE TABLE IF NOT EXISTS booking_payments (
		id SERIAL PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		amount REAL,
		status TEXT,
		order_id TEXT UNIQUE,
		payment_id TEXT,
		razorpay_sign TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	dlqTable := `
	CREATE TABLE IF NOT EXISTS dlq_messages (
		id SERIAL PRIMARY KEY,
		message_id UUID UNIQUE NOT NULL,
		topic TEXT NOT NULL,
		key TEXT,
		value JSONB,
		error_message TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		max_retries INTEGER NOT NULL DEFAULT 3,
		last_retry_at TIMESTAMP,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		resolved_at TIMESTAMP,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Order matters: counsellors reference profiles, bookings reference
	// counsellors, payments reference bookings.
	tables := []struct {
		name string
		ddl  string
	}{
		{"profiles", profileTable},
		{"counsellors", counsellorTable},
		{"questionnaire_responses", questionnaireTable},
		{"bookings", bookingTable},
		{"booking_payments", paymentTable},
		{"dlq_messages", dlqTable},
	}
	for _, t := range tables {
		if _, err := DB.Exec(t.ddl); err != nil {
			return fmt.Errorf("error creating %s table: %w", t.name, err)
		}
	}

	logger.Info("Database schema ready (%d tables)", len(tables))
	return nil
}
