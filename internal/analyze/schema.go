package analyze

import (
	"sort"

	"github.com/querylens/querylens/internal/models"
)

// typeOrder breaks consensus ties deterministically.
var typeOrder = map[models.ColumnType]int{
	models.TypeInteger:  0,
	models.TypeFloat:    1,
	models.TypeString:   2,
	models.TypeBoolean:  3,
	models.TypeDatetime: 4,
	models.TypeNull:     5,
}

// buildSchemaOverview maps column sharing across the group. A column is
// common only when every dataset has it; partial columns map to the
// names of the datasets holding them, in input order. The consensus
// type is the majority type across holders (all-null columns abstain);
// columns with more than one distinct type also get the full
// per-dataset type map.
func buildSchemaOverview(items []NamedDataset) models.SchemaOverview {
	var columns []string
	seen := make(map[string]bool)
	holders := make(map[string][]string)
	colTypes := make(map[string]map[string]models.ColumnType)

	for _, item := range items {
		for _, col := range item.Data.Columns() {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
				colTypes[col] = make(map[string]models.ColumnType)
			}
			holders[col] = append(holders[col], item.Name)
			t, _ := item.Data.ColumnType(col)
			colTypes[col][item.Name] = t
		}
	}
	sort.Strings(columns)

	overview := models.SchemaOverview{
		PartialColumns: make(map[string][]string),
		ConsensusTypes: make(map[string]models.ColumnType, len(columns)),
		TypeConflicts:  make(map[string]map[string]models.ColumnType),
	}

	for _, col := range columns {
		if len(holders[col]) == len(items) {
			overview.CommonColumns = append(overview.CommonColumns, col)
		} else {
			overview.PartialColumns[col] = holders[col]
		}
		overview.ConsensusTypes[col] = consensusType(colTypes[col])
		if distinctTypes(colTypes[col]) > 1 {
			overview.TypeConflicts[col] = colTypes[col]
		}
	}
	return overview
}

// consensusType returns the majority type across the datasets holding
// the column, preferring the earlier type in typeOrder on ties.
// All-null columns only win when nothing else is present.
func consensusType(byDataset map[string]models.ColumnType) models.ColumnType {
	counts := make(map[models.ColumnType]int)
	for _, t := range byDataset {
		counts[t]++
	}
	best := models.TypeNull
	bestCount := 0
	for t, n := range counts {
		if t == models.TypeNull {
			continue
		}
		if n > bestCount || (n == bestCount && typeOrder[t] < typeOrder[best]) {
			best, bestCount = t, n
		}
	}
	if bestCount == 0 {
		return models.TypeNull
	}
	return best
}

// distinctTypes counts the non-null types present.
func distinctTypes(byDataset map[string]models.ColumnType) int {
	set := make(map[models.ColumnType]bool)
	for _, t := range byDataset {
		if t != models.TypeNull {
			set[t] = true
		}
	}
	return len(set)
}
