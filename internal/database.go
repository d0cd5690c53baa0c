package internal

import (
	"fmt"

	"DF-ANLZ/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the schema
	if err := autoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Println("Database connected and migrated successfully")
	return nil
}

func autoMigrate() error {
	fmt.Println("Ensuring template_analyses table exists...")
	result := DB.Exec(`
        CREATE TABLE IF NOT EXISTS template_analyses (
            id varchar(191) PRIMARY KEY,
            owner_id varchar(191),
            filename longtext NOT NULL,
            original_name longtext,
            original_gcs_path longtext NOT NULL,
            templated_gcs_path longtext NOT NULL,
            original_url longtext,
            templated_url longtext,
            file_size bigint,
            mime_type longtext,
            analysis json,
            ai_analysis_score double,
            analysis_source varchar(32),
            visibility varchar(16) DEFAULT 'private',
            created_at datetime(3) NULL,
            updated_at datetime(3) NULL,
            deleted_at datetime(3) NULL,
            INDEX idx_template_analyses_owner_id (owner_id),
            INDEX idx_template_analyses_deleted_at (deleted_at)
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create template_analyses table: %w", result.Error)
	}

	ensureTemplateAnalysesColumns := map[string]string{
		"owner_id":           "ALTER TABLE template_analyses ADD COLUMN owner_id varchar(191)",
		"original_name":      "ALTER TABLE template_analyses ADD COLUMN original_name longtext",
		"original_gcs_path":  "ALTER TABLE template_analyses ADD COLUMN original_gcs_path longtext",
		"templated_gcs_path": "ALTER TABLE template_analyses ADD COLUMN templated_gcs_path longtext",
		"original_url":       "ALTER TABLE template_analyses ADD COLUMN original_url longtext",
		"templated_url":      "ALTER TABLE template_analyses ADD COLUMN templated_url longtext",
		"analysis":           "ALTER TABLE template_analyses ADD COLUMN analysis json",
		"ai_analysis_score":  "ALTER TABLE template_analyses ADD COLUMN ai_analysis_score double",
		"analysis_source":    "ALTER TABLE template_analyses ADD COLUMN analysis_source varchar(32)",
		"visibility":         "ALTER TABLE template_analyses ADD COLUMN visibility varchar(16) DEFAULT 'private'",
	}

	for column, stmt := range ensureTemplateAnalysesColumns {
		if err := ensureColumn("template_analyses", column, stmt); err != nil {
			return err
		}
	}

	fmt.Println("Creating activity_logs table if not exists...")
	result = DB.Exec(`
        CREATE TABLE IF NOT EXISTS activity_logs (
            id varchar(36) PRIMARY KEY,
            method varchar(10) NOT NULL,
            path varchar(255) NOT NULL,
            user_agent text,
            ip_address varchar(45),
            template_id varchar(36),
            query_params text,
            status_code int NOT NULL,
            response_time bigint NOT NULL,
            created_at datetime(3) NULL,
            updated_at datetime(3) NULL,
            deleted_at datetime(3) NULL,
            INDEX idx_activity_logs_deleted_at (deleted_at),
            INDEX idx_activity_logs_method (method),
            INDEX idx_activity_logs_path (path),
            INDEX idx_activity_logs_template_id (template_id),
            INDEX idx_activity_logs_created_at (created_at)
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create activity_logs table: %w", result.Error)
	}

	fmt.Println("Tables created/verified successfully")
	return nil
}

func ensureColumn(table, column, statement string) error {
	if DB.Migrator().HasColumn(table, column) {
		return nil
	}

	fmt.Printf("Adding missing column %s.%s...\n", table, column)
	if err := DB.Exec(statement).Error; err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}

	return nil
}

func CloseDB() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
