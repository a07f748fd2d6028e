// Package store holds the repositories over the shared Postgres pool. Each
// table gets its own repository; queries are built with squirrel and scanned
// with pgxscan.
package store

import sq "github.com/Masterminds/squirrel"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
