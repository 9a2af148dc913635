package repository

// int64Array passes a Go []int64 through as a bind parameter for a
// Postgres bigint[] column. pgx's stdlib driver encodes []int64 arguments
// natively, so this is an identity helper that documents intent at call
// sites rather than performing any conversion.
func int64Array(ids []int64) []int64 {
	return ids
}
