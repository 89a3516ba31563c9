package game

// Mark is one of the two symbols a player holds for the lifetime of a room.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
	Empty Mark = ""
)

// Other returns the opposing mark. Empty maps to itself.
func (m Mark) Other() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	}
	return m
}

// Board is the 3x3 grid in row-major order.
type Board [9]Mark

// winLines lists every winning triple, checked in declared order.
var winLines = [8][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

type Win struct {
	Winner Mark
	Cells  [3]int
}

// CheckWin reports the first winning triple on the board, if any.
func CheckWin(b Board) (Win, bool) {
	for _, line := range winLines {
		a, c, d := line[0], line[1], line[2]
		if b[a] != Empty && b[a] == b[c] && b[c] == b[d] {
			return Win{Winner: b[a], Cells: line}, true
		}
	}
	return Win{}, false
}

// CheckDraw reports whether the board is full. Callers must rule out a win
// first: a full board can still contain a winning triple.
func CheckDraw(b Board) bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}
