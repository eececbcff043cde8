// Package migrations embeds the schema of the postgres and clickhouse stores
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed postgres/*.sql clickhouse/*.sql
var files embed.FS

// Postgres returns the postgres migrations in apply order
func Postgres() ([]string, error) { return read("postgres") }

// Clickhouse returns the clickhouse migrations in apply order
func Clickhouse() ([]string, error) { return read("clickhouse") }

func read(dir string) ([]string, error) {
	names, err := fs.Glob(files, dir+"/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, n := range names {
		b, err := fs.ReadFile(files, n)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}
