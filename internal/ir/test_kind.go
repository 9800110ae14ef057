package ir

// TestKind enumerates the comparison performed by a conditional branch.
// The first six compare two registers, the *z variants compare one
// register against zero.
type TestKind uint8

const (
	TestEq TestKind = iota
	TestNe
	TestLt
	TestGe
	TestGt
	TestLe
	TestEqz
	TestNez
	TestLtz
	TestGez
	TestGtz
	TestLez

	numTestKinds
)

// invertTable maps every test kind to its logical negation. Kept as an
// exhaustive table so a missing entry is a testable defect rather than a
// silent fallthrough.
var invertTable = [numTestKinds]TestKind{
	TestEq:  TestNe,
	TestNe:  TestEq,
	TestLt:  TestGe,
	TestGe:  TestLt,
	TestGt:  TestLe,
	TestLe:  TestGt,
	TestEqz: TestNez,
	TestNez: TestEqz,
	TestLtz: TestGez,
	TestGez: TestLtz,
	TestGtz: TestLez,
	TestLez: TestGtz,
}

// Invert returns the logical negation of the test.
func (k TestKind) Invert() TestKind {
	return invertTable[k]
}

// CompareToZero reports whether the test reads a single register.
func (k TestKind) CompareToZero() bool {
	return k >= TestEqz
}

// String returns the assembly mnemonic suffix for the test.
func (k TestKind) String() string {
	switch k {
	case TestEq:
		return "eq"
	case TestNe:
		return "ne"
	case TestLt:
		return "lt"
	case TestGe:
		return "ge"
	case TestGt:
		return "gt"
	case TestLe:
		return "le"
	case TestEqz:
		return "eqz"
	case TestNez:
		return "nez"
	case TestLtz:
		return "ltz"
	case TestGez:
		return "gez"
	case TestGtz:
		return "gtz"
	case TestLez:
		return "lez"
	default:
		return "unknown"
	}
}

// ParseTestKind converts a mnemonic suffix back to a TestKind.
func ParseTestKind(s string) (TestKind, bool) {
	for k := TestKind(0); k < numTestKinds; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
