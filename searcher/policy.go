package searcher

import "math"

type ucb struct {
	c    float64
	logN float64
}

// newUCB prepares UCB1 for the children of a node visited parentVisits
// times. An unvisited parent gives no exploration bonus.
func newUCB(c float64, parentVisits int) ucb {
	u := ucb{c: c}
	if parentVisits > 0 {
		u.logN = math.Log(float64(parentVisits))
	}
	return u
}

func (u ucb) evaluate(value float64, visits int) float64 {
	if visits == 0 {
		panic("cannot compute UCB: 0 visits")
	}
	// UCB1 = q/n + c*sqrt(ln(N)/n)
	n := float64(visits)
	return value/n + u.c*math.Sqrt(u.logN/n)
}
