package compare

import (
	"sort"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

// compareSchemas partitions the column-name union into common /
// only-in-A / only-in-B and flags type mismatches on common columns.
// The three partitions are disjoint and cover the full column universe.
func compareSchemas(a, b *dataset.Dataset) models.SchemaComparison {
	colsA := a.Columns()
	colsB := b.Columns()
	inA := make(map[string]bool, len(colsA))
	for _, col := range colsA {
		inA[col] = true
	}
	inB := make(map[string]bool, len(colsB))
	for _, col := range colsB {
		inB[col] = true
	}

	var common, onlyA, onlyB []string
	for _, col := range colsA {
		if inB[col] {
			common = append(common, col)
		} else {
			onlyA = append(onlyA, col)
		}
	}
	for _, col := range colsB {
		if !inA[col] {
			onlyB = append(onlyB, col)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	var mismatches []models.TypeMismatch
	for _, col := range common {
		ta, _ := a.ColumnType(col)
		tb, _ := b.ColumnType(col)
		// An all-null column carries no type evidence.
		if ta == models.TypeNull || tb == models.TypeNull {
			continue
		}
		if ta != tb {
			mismatches = append(mismatches, models.TypeMismatch{Column: col, TypeA: ta, TypeB: tb})
		}
	}

	return models.SchemaComparison{
		CommonColumns:  common,
		OnlyInA:        onlyA,
		OnlyInB:        onlyB,
		TypeMismatches: mismatches,
	}
}
