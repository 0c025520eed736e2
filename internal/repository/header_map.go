package repository

import (
	"fmt"
	"strings"
)

// createHeaderMap maps required column names to their indices in the CSV
// header, case-insensitively
func createHeaderMap(header []string, requiredFields []string) (map[string]int, error) {
	columnMap := make(map[string]int)

	for _, column := range requiredFields {
		found := false
		for i, field := range header {
			if strings.EqualFold(column, strings.TrimSpace(field)) {
				columnMap[column] = i
				found = true
				break
			}
		}

		if !found {
			return nil, fmt.Errorf("required field '%s' not found in CSV header", column)
		}
	}

	return columnMap, nil
}

// maxColumnIndex returns the highest index a row must contain
func maxColumnIndex(columnMap map[string]int) int {
	maxIndex := -1
	for _, idx := range columnMap {
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	return maxIndex
}
