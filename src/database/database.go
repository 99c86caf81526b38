package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/mpesaviz/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Initializing database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Initializing database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS statement_slots (
		slot TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := db.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create statement_slots table: %v", err)
	}
}
