package utils

import "strings"

// ColumnSeparator separates a column family from its qualifier.
const ColumnSeparator = ":"

// Family returns the family part of a column name, "info:name" -> "info".
func Family(column string) string {
	if i := strings.Index(column, ColumnSeparator); i >= 0 {
		return column[:i]
	}
	return column
}

// SplitColumn splits a fully qualified column into family and qualifier.
// The qualifier is empty when the name carries no separator.
func SplitColumn(column string) (family, qualifier string) {
	if i := strings.Index(column, ColumnSeparator); i >= 0 {
		return column[:i], column[i+1:]
	}
	return column, ""
}

// JoinColumn builds "family:qualifier".
func JoinColumn(family, qualifier string) string {
	return family + ColumnSeparator + qualifier
}

// FamilyPrefix returns the scan column that selects every qualifier of the
// family the column belongs to, "info:name" -> "info:".
func FamilyPrefix(column string) string {
	return Family(column) + ColumnSeparator
}

// Families strips qualifiers from every column name.
func Families(columns []string) []string {
	families := make([]string, 0, len(columns))
	for _, c := range columns {
		families = append(families, Family(c))
	}
	return families
}

// FamilyPrefixes formats every column name as a family prefix.
func FamilyPrefixes(columns []string) []string {
	prefixes := make([]string, 0, len(columns))
	for _, c := range columns {
		prefixes = append(prefixes, FamilyPrefix(c))
	}
	return prefixes
}

// ClosestRowAfter returns the smallest row key sorting strictly after row.
func ClosestRowAfter(row []byte) []byte {
	next := make([]byte, len(row), len(row)+1)
	copy(next, row)
	return append(next, 0x00)
}
