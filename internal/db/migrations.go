package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/bloom/migrations"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)

type migration struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

func applyMigrations(database *gorm.DB, files fs.FS) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := loadMigrations(files)
	if err != nil {
		return err
	}

	applied, err := appliedVersions(database)
	if err != nil {
		return err
	}

	for _, item := range pending {
		if _, done := applied[item.Version]; done {
			continue
		}
		if err := applyMigration(database, item); err != nil {
			return err
		}
	}
	return nil
}

func embeddedMigrationFiles() fs.FS {
	return embeddedmigrations.Files
}

func loadMigrations(files fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	result := make([]migration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(name)
		if len(matches) != 2 {
			continue
		}

		version := matches[1]
		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}
		if existing, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, existing, name)
		}
		seen[version] = name

		raw, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		result = append(result, migration{Version: version, Order: order, Name: name, SQL: string(raw)})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	return result, nil
}

func appliedVersions(database *gorm.DB) (map[string]struct{}, error) {
	versions := make([]string, 0)
	if err := database.Raw(`SELECT version FROM schema_migrations`).Scan(&versions).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}

	result := make(map[string]struct{}, len(versions))
	for _, version := range versions {
		result[version] = struct{}{}
	}
	return result, nil
}

func applyMigration(database *gorm.DB, item migration) error {
	statements := splitSQLStatements(item.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s: %w", item.Name, errors.New("no SQL statements"))
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s: %w", item.Name, err)
			}
		}
		if err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`, item.Version, item.Name).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", item.Name, err)
		}
		return nil
	})
}

func splitSQLStatements(sqlText string) []string {
	parts := strings.Split(sqlText, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
