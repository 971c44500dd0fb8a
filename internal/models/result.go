package models

// QueryResult is the paginated outcome of one query execution. Rows
// carry only plain values (numbers, strings, bools, nil) so the result
// serializes cleanly; NaN and infinity never appear, they are emitted
// as nulls.
type QueryResult struct {
	Rows       []Row     `json:"rows"`
	Columns    []string  `json:"columns"`
	TotalCount int       `json:"total_count"`
	HasMore    bool      `json:"has_more"`
	Kind       QueryKind `json:"kind"`
}
