package shapes

// Square is not what was asked for.
type Square struct {
	side float64
}

// NewSquare returns a square.
func NewSquare(side float64) *Square {
	return &Square{side: side}
}
