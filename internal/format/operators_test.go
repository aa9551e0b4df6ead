package format

import "testing"

func TestOperatorTableLongestFirst(t *testing.T) {
	for lead, ops := range operatorTable {
		for i := 1; i < len(ops); i++ {
			if len(ops[i]) > len(ops[i-1]) {
				t.Fatalf("operators for %q not sorted longest first: %v", lead, ops)
			}
		}
		for _, op := range ops {
			if op[0] != lead {
				t.Fatalf("operator %q registered under %q", op, lead)
			}
		}
	}
}

func TestMatchOperator(t *testing.T) {
	cases := []struct {
		src  string
		want string
		ok   bool
	}{
		{"+", "+", true},
		{"+++=x", "+++=", true},
		{"+=1", "+=", true},
		{"<<=x", "<<=", true},
		{"<||?", "<||?", true},
		{"<|>", "<|>", true},
		{"==", "==", true},
		{"===", "===", true},
		{"!x", "", false},
		{"-x", "", false},
		{"->", "->", true},
		{"&x", "", false},
		{"&&", "&&", true},
		{"a", "", false},
	}
	for _, tc := range cases {
		got, ok := matchOperator(tc.src, 0)
		if got != tc.want || ok != tc.ok {
			t.Errorf("matchOperator(%q) = %q, %v; want %q, %v", tc.src, got, ok, tc.want, tc.ok)
		}
	}
	if _, ok := matchOperator("a", 1); ok {
		t.Fatal("matchOperator past the end reported a match")
	}
}

func TestOperatorsReturnsCopy(t *testing.T) {
	ops := Operators('<')
	if len(ops) == 0 || ops[0] != "<||?" {
		t.Fatalf("Operators('<') = %v, want \"<||?\" first", ops)
	}
	ops[0] = "mutated"
	if Operators('<')[0] != "<||?" {
		t.Fatal("Operators leaked the internal table")
	}
	if Operators('a') != nil {
		t.Fatal("Operators for a non-operator lead should be empty")
	}
}
