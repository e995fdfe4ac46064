// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quadrature

import "github.com/pdiddy/quadrature-engine/pkg/types"

// Method identifies one of the fixed quadrature rules. The numeric order is
// the comparison order.
type Method int

const (
	MethodTrapezoid Method = iota
	MethodSimpson13
	MethodSimpson38
	MethodBoole
	MethodRomberg

	methodCount
)

type methodEntry struct {
	name         string
	precondition string
	rule         Rule
}

var methodTable = [methodCount]methodEntry{
	MethodTrapezoid: {"Trapezoid", "n >= 1", Trapezoid},
	MethodSimpson13: {"Simpson 1/3", "n >= 1 and n even", Simpson13},
	MethodSimpson38: {"Simpson 3/8", "n >= 1 and n divisible by 3", Simpson38},
	MethodBoole:     {"Boole", "n >= 1 and n divisible by 4", Boole},
	MethodRomberg:   {"Romberg", "n >= 1 and n a power of two", RombergRule},
}

// Methods returns every method in comparison order.
func Methods() []Method {
	out := make([]Method, methodCount)
	for i := range out {
		out[i] = Method(i)
	}
	return out
}

func (m Method) String() string {
	if m < 0 || m >= methodCount {
		return "unknown"
	}
	return methodTable[m].name
}

// Precondition describes the subdivision counts the method accepts.
func (m Method) Precondition() string {
	return methodTable[m].precondition
}

// Apply runs the method's rule.
func (m Method) Apply(f SampledFunction, a, b float64, n int) (Outcome, bool) {
	return methodTable[m].rule(f, a, b, n)
}

// Accepts reports whether the method is applicable for n subdivisions.
func (m Method) Accepts(n int) bool {
	switch m {
	case MethodTrapezoid:
		return n >= 1
	case MethodSimpson13:
		return n >= 1 && n%2 == 0
	case MethodSimpson38:
		return n >= 1 && n%3 == 0
	case MethodBoole:
		return n >= 1 && n%4 == 0
	case MethodRomberg:
		return IsPowerOfTwo(n)
	}
	return false
}

// Describe lists every method with its precondition.
func Describe() []types.MethodInfo {
	infos := make([]types.MethodInfo, 0, methodCount)
	for _, m := range Methods() {
		infos = append(infos, types.MethodInfo{Name: m.String(), Precondition: m.Precondition()})
	}
	return infos
}
