// Package migrations embeds the schema of the todos table for each supported store.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Source returns the migrate source for dialect ("sqlite" or "postgres").
func Source(dialect string) (source.Driver, error) {
	sub, err := fs.Sub(files, dialect)

	if err != nil {
		return nil, fmt.Errorf("no migrations for %s: %w", dialect, err)
	}

	return iofs.New(sub, ".")
}
