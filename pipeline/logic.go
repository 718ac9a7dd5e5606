package pipeline

// LogicMode combines a sequence of boolean outcomes. AND and OR evaluate
// left-to-right with short-circuit; NOT negates its single operand; XOR
// folds left-to-right without short-circuit.
type LogicMode int

const (
	LogicAnd LogicMode = iota + 1
	LogicOr
	LogicNot
	LogicXor
)

// String returns the operator name.
func (m LogicMode) String() string {
	switch m {
	case LogicAnd:
		return "and"
	case LogicOr:
		return "or"
	case LogicNot:
		return "not"
	case LogicXor:
		return "xor"
	default:
		return "unknown"
	}
}

// evalSeq folds the lazily-produced operand sequence under the mode.
// Operands are produced one at a time so AND/OR can short-circuit without
// evaluating the rest. An empty sequence is false; NOT uses only the first
// operand.
func evalSeq(mode LogicMode, n int, operand func(i int) bool) bool {
	if n == 0 {
		return false
	}
	switch mode {
	case LogicNot:
		return !operand(0)
	case LogicAnd:
		for i := 0; i < n; i++ {
			if !operand(i) {
				return false
			}
		}
		return true
	case LogicOr:
		for i := 0; i < n; i++ {
			if operand(i) {
				return true
			}
		}
		return false
	case LogicXor:
		res := operand(0)
		for i := 1; i < n; i++ {
			res = res != operand(i)
		}
		return res
	default:
		return false
	}
}
