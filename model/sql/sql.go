package sql

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/jheinrichs/remindme/logger"
)

//go:embed migrations/*
var embeddedMigrations embed.FS

var log = logger.New("sql")

// New connects to MySQL using the MYSQL_* environment variables, waits for
// the server to become reachable and applies pending migrations.
func New() (*sqlx.DB, error) {
	host := strings.TrimSpace(os.Getenv("MYSQL_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("MYSQL_PORT"))
	if port == "" {
		port = "3306"
	}
	user := strings.TrimSpace(os.Getenv("MYSQL_USER"))
	password := strings.TrimSpace(os.Getenv("MYSQL_PASSWORD"))
	dbname := strings.TrimSpace(os.Getenv("MYSQL_DB"))
	tls := strings.TrimSpace(os.Getenv("MYSQL_TLS"))
	if tls == "" {
		tls = "false"
	}

	connectionString := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&tls=%s",
		user,
		password,
		host,
		port,
		dbname,
		tls,
	)

	db, err := waitForDB(connectionString)
	if err != nil {
		return nil, err
	}

	_, ignoreMigration := os.LookupEnv("IGNORE_SQL_MIGRATION")
	if !ignoreMigration {
		migrationSource := &migrate.EmbedFileSystemMigrationSource{FileSystem: embeddedMigrations, Root: "migrations"}
		n, err := migrate.Exec(db.DB, "mysql", migrationSource, migrate.Up)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Info().Msgf("Applied %d migration(s)", n)
		}
	}

	db = db.Unsafe()
	db.SetMaxIdleConns(25)
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// waitForDB retries the initial connection so the service can start before
// the database container is ready.
func waitForDB(connectionString string) (*sqlx.DB, error) {
	const attempts = 30

	var db *sqlx.DB
	var err error
	for i := 0; i < attempts; i++ {
		db, err = sqlx.Connect("mysql", connectionString)
		if err == nil {
			return db, nil
		}
		log.Warn().Err(err).Msg("Database unavailable, waiting 1 second...")
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("database did not become available: %w", err)
}

func NewNullString(s string) sql.NullString {
	if len(s) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{
		String: s,
		Valid:  true,
	}
}
