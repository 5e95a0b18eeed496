package db

import (
	"database/sql"

	_ "github.com/lib/pq"
)

func Connect(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		category   TEXT NOT NULL,
		mood       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS sources (
		seq   SERIAL PRIMARY KEY,
		id    TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		link  TEXT NOT NULL,
		trust BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS override_events (
		id         SERIAL PRIMARY KEY,
		mood       TEXT NOT NULL,
		category   TEXT NOT NULL,
		block      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	_, err := db.Exec(ddl)
	return err
}
