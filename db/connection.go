package db

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

type DB struct {
	Conn *sqlx.DB
}

func NewDBConn(connString string) (DB, error) {
	traceDB, err := otelsql.Open("postgres", connString,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName("outings"),
	)
	if err != nil {
		return DB{}, err
	}

	return DB{Conn: sqlx.NewDb(traceDB, "postgres")}, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

func (db *DB) MigrateSchema() error {
	_, err := db.Conn.Exec(schema)
	return err
}
