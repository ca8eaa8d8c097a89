package sheet

import "strconv"

// ParseLabel converts an A1-style label into zero-based column and row
// indices. Columns are one or more capital letters, A through Z then AA, AB,
// and so on. Rows are decimal numbers starting at 1 without leading zeros.
func ParseLabel(label string) (col, row int, ok bool) {
	i := 0
	for i < len(label) && 'A' <= label[i] && label[i] <= 'Z' {
		col = col*26 + int(label[i]-'A'+1)
		if col > maxIndex {
			return 0, 0, false
		}
		i++
	}
	if i == 0 || i == len(label) || label[i] == '0' {
		return 0, 0, false
	}
	for _, c := range label[i:] {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}
	row, err := strconv.Atoi(label[i:])
	if err != nil || row > maxIndex {
		return 0, 0, false
	}
	return col - 1, row - 1, true
}

// maxIndex bounds label parsing well below integer overflow.
const maxIndex = 1 << 24

// Label converts zero-based column and row indices into an A1-style label.
// Panics if either index is negative.
func Label(col, row int) string {
	if col < 0 || row < 0 {
		panic("sheet: negative cell index")
	}
	var b [16]byte
	n := len(b)
	for col++; col > 0; col = (col - 1) / 26 {
		n--
		b[n] = byte('A' + (col-1)%26)
	}
	return string(b[n:]) + strconv.Itoa(row+1)
}
