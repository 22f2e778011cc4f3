package portal

import (
	"fmt"
	"math"
)

// Percent is a percentage in the 0-100 scale, as served by the backend.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

func (p Percent) Abs() Percent { return Percent(math.Abs(float64(p))) }

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

// Short is the one-decimal form used in allocation widgets.
func (p Percent) Short() string {
	return fmt.Sprintf("%.1f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
