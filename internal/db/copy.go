// Package db holds the pgx pool abstraction and COPY helpers shared by
// the province loader and the assignment store.
package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom streams rows into table with the COPY protocol. Assignment
// batches run to millions of rows, so plain INSERTs are not an option.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	return copyInto(ctx, pool, pgx.Identifier{table}, columns, rows)
}

// CopyFromSchema is CopyFrom for a schema-qualified table. Province
// geometry lives under its own schema so reloads can swap it atomically.
func CopyFromSchema(ctx context.Context, pool Pool, schema, table string, columns []string, rows [][]any) (int64, error) {
	return copyInto(ctx, pool, pgx.Identifier{schema, table}, columns, rows)
}

func copyInto(ctx context.Context, pool Pool, ident pgx.Identifier, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return rows[i], nil
	})
	n, err := pool.CopyFrom(ctx, ident, columns, src)
	if err != nil {
		return 0, eris.Wrapf(err, "db: copy into %s", strings.Join(ident, "."))
	}
	return n, nil
}
