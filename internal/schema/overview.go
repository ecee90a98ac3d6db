package schema

import "tabemb/internal/domain"

// RoleOutput labels columns that are neither an input role nor the label,
// typically output columns of a previous run.
const RoleOutput = "other"

// ColumnSummary describes one column of a dataset before annotation.
type ColumnSummary struct {
	Name    string
	Role    string
	Missing int
}

// Overview returns the role and missing-cell count of every column, in column order.
func Overview(ds *domain.Dataset, roles domain.Roles) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		role := RoleOutput
		if r, ok := roles.RoleOf(col); ok {
			role = r.String()
		}
		missing := 0
		for _, row := range ds.Rows {
			if domain.IsMissing(row[col]) {
				missing++
			}
		}
		out = append(out, ColumnSummary{Name: col, Role: role, Missing: missing})
	}
	return out
}
