package db

import "math"

// QueryResult is the outcome of a statement that returns no rows
type QueryResult struct {
	RowsAffected int64 `json:"rows_affected"`
	LastInsertID int64 `json:"last_insert_id"`
}

// Execute runs a statement and reports affected rows and the last insert ID
func (db *DB) Execute(query string, values []any) (*QueryResult, error) {
	result, err := db.Exec(query, normalizeArgs(values)...)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &QueryResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

// Select runs a query and returns each row as a column-name keyed map.
// BLOB and TEXT values both come back as strings.
func (db *DB) Select(query string, values []any) ([]map[string]any, error) {
	rows, err := db.Query(query, normalizeArgs(values)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]any{}
	for rows.Next() {
		scanned := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range scanned {
			ptrs[i] = &scanned[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := scanned[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = scanned[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// normalizeArgs binds integral JSON numbers as integers so they are stored
// as INTEGER rather than REAL.
func normalizeArgs(values []any) []any {
	args := make([]any, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			args[i] = int64(f)
			continue
		}
		args[i] = v
	}
	return args
}
