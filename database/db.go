package database

import (
	"fmt"

	"healthcare-booking/config"
	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	"healthcare-booking/models/appointment"
	"healthcare-booking/models/blog"
	"healthcare-booking/models/log"
	"healthcare-booking/models/ratelimit"
	"healthcare-booking/models/review"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the PostgreSQL connection. Driver errors are translated so unique violations
// surface as gorm.ErrDuplicatedKey.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	logger.Success("Successfully connected to the database")
	return db, nil
}

// InitDB connects and brings the schema up to date.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the staged AutoMigrate, then the indexes and foreign keys gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		logger.Error("Failed to run auto migration", err)
		return err
	}
	logger.Success("All tables migrated successfully")

	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", err)
		return err
	}
	logger.Success("All indexes created successfully")

	createForeignKeyConstraints(db)
	return nil
}

func autoMigrate(db *gorm.DB) error {
	stages := [][]interface{}{
		// Stage 1: accounts, referenced by everything else
		{&account.Account{}},
		// Stage 2: rows owned by accounts
		{&appointment.Appointment{}, &blog.Post{}},
		// Stage 3: rows owned by appointments
		{&appointment.StatusEvent{}, &review.Review{}},
		// Stage 4: operational tables
		{&log.Log{}, &ratelimit.Hit{}},
	}

	for _, stage := range stages {
		for _, model := range stage {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
	}
	return nil
}

type indexDef struct {
	name string
	sql  string
}

var indexes = []indexDef{
	// At most one pending or confirmed appointment per doctor slot.
	{"idx_appointments_active_slot", `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
		ON appointments(doctor_id, appointment_date, appointment_time)
		WHERE status IN ('pending', 'confirmed')`},
	{"idx_appointments_patient_date", "CREATE INDEX IF NOT EXISTS idx_appointments_patient_date ON appointments(patient_id, appointment_date)"},
	{"idx_appointments_doctor_date", "CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date ON appointments(doctor_id, appointment_date)"},
	{"idx_appointments_reminder", `CREATE INDEX IF NOT EXISTS idx_appointments_reminder
		ON appointments(scheduled_at) WHERE status = 'confirmed' AND reminder_sent = false`},

	{"idx_reviews_patient_doctor", "CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_patient_doctor ON reviews(patient_id, doctor_id)"},
	{"idx_reviews_doctor_visible", "CREATE INDEX IF NOT EXISTS idx_reviews_doctor_visible ON reviews(doctor_id) WHERE is_hidden = false"},

	{"idx_accounts_role_active", "CREATE INDEX IF NOT EXISTS idx_accounts_role_active ON accounts(role, is_active)"},
	{"idx_accounts_specialization", "CREATE INDEX IF NOT EXISTS idx_accounts_specialization ON accounts(LOWER(specialization))"},
	{"idx_accounts_city", "CREATE INDEX IF NOT EXISTS idx_accounts_city ON accounts(LOWER(city))"},

	{"idx_blog_posts_status_published", "CREATE INDEX IF NOT EXISTS idx_blog_posts_status_published ON blog_posts(status, published_at DESC)"},
	{"idx_blog_posts_tags", "CREATE INDEX IF NOT EXISTS idx_blog_posts_tags ON blog_posts USING GIN (tags)"},

	{"idx_logs_status_code", "CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)"},
	{"idx_logs_created_at", "CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)"},
}

func createIndexes(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

var constraints = []struct {
	name string
	sql  string
}{
	{"fk_appointments_patient", `ALTER TABLE appointments ADD CONSTRAINT fk_appointments_patient
		FOREIGN KEY (patient_id) REFERENCES accounts(id) ON UPDATE CASCADE ON DELETE RESTRICT`},
	{"fk_appointments_doctor", `ALTER TABLE appointments ADD CONSTRAINT fk_appointments_doctor
		FOREIGN KEY (doctor_id) REFERENCES accounts(id) ON UPDATE CASCADE ON DELETE RESTRICT`},
	{"fk_appointments_rescheduled_from", `ALTER TABLE appointments ADD CONSTRAINT fk_appointments_rescheduled_from
		FOREIGN KEY (rescheduled_from) REFERENCES appointments(id) ON UPDATE CASCADE ON DELETE SET NULL`},
	{"fk_appointment_status_events_appointment", `ALTER TABLE appointment_status_events ADD CONSTRAINT fk_appointment_status_events_appointment
		FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON UPDATE CASCADE ON DELETE CASCADE`},
	{"fk_reviews_appointment", `ALTER TABLE reviews ADD CONSTRAINT fk_reviews_appointment
		FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON UPDATE CASCADE ON DELETE RESTRICT`},
	{"fk_reviews_patient", `ALTER TABLE reviews ADD CONSTRAINT fk_reviews_patient
		FOREIGN KEY (patient_id) REFERENCES accounts(id) ON UPDATE CASCADE ON DELETE RESTRICT`},
	{"fk_reviews_doctor", `ALTER TABLE reviews ADD CONSTRAINT fk_reviews_doctor
		FOREIGN KEY (doctor_id) REFERENCES accounts(id) ON UPDATE CASCADE ON DELETE RESTRICT`},
	{"fk_blog_posts_author", `ALTER TABLE blog_posts ADD CONSTRAINT fk_blog_posts_author
		FOREIGN KEY (author_id) REFERENCES accounts(id) ON UPDATE CASCADE ON DELETE RESTRICT`},
}

// createForeignKeyConstraints adds each missing constraint; failures are logged and skipped.
func createForeignKeyConstraints(db *gorm.DB) {
	const checkSQL = `SELECT EXISTS (
		SELECT 1 FROM information_schema.table_constraints WHERE constraint_name = ?
	)`

	for _, constraint := range constraints {
		var exists bool
		if err := db.Raw(checkSQL, constraint.name).Scan(&exists).Error; err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}
		if exists {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
			continue
		}
		if err := db.Exec(constraint.sql).Error; err != nil {
			logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			continue
		}
		logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
	}
}
