package store

import (
	"database/sql"
	"log"

	_ "modernc.org/sqlite"
)

func openTestDatabase() *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Fatal(err)
	}
	RunMigrations(db)
	RegisterKinds()
	return db
}
