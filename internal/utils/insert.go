package querybuilder

// InsertRows holds the values of a multi row insert, one slice per row
type InsertRows [][]interface{}

// Width returns the number of values per row, or -1 when rows are ragged.
func (rows InsertRows) Width() int {
	if len(rows) == 0 {
		return 0
	}
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) != width {
			return -1
		}
	}
	return width
}

// Assignment is one column = value pair of an UPDATE
type Assignment struct {
	Column string
	Value  interface{}
}
