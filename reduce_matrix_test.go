package symbolic

import "testing"

func TestReduceMatrix(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"[1+1,x]", "[2,x]"},
		{"det([1,2;3,4])", "-2"},
		{"det([2,0,0;0,3,0;0,0,4])", "24"},
		{"det([1,2;2,4])", "0"},
		{"det([1,2,3;4,5,6])", "undef"},
		{"det(5)", "5"},
		{"trace([1,2;3,4])", "5"},
		{"transpose([1,2,3;4,5,6])", "[1,4;2,5;3,6]"},
		{"transpose(7)", "7"},
		{"dim([1,2,3;4,5,6])", "[2,3]"},
		{"dim(5)", "[1,1]"},
		{"identity(2)", "[1,0;0,1]"},
		{"identity(0)", "undef"},
		{"identity(1/2)", "undef"},
		{"inverse([2,0;0,4])", "[1/2,0;0,1/4]"},
		{"inverse([1,2;2,4])", "undef"},
		{"confidence(1/2,4)", "[0,1]"},
		{"confidence(2,4)", "undef"},
		{"prediction(1/2,100)", "[201/500,299/500]"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p := NewPool(128)
			e := reduced(t, p, c.src, systemCtx)
			if got := e.String(); got != c.want {
				t.Errorf("wrong reduction: want %q, got %q", c.want, got)
			}
			checkPool(t, p)
		})
	}
}

func TestReduceSymbolicDeterminant(t *testing.T) {
	p := NewPool(128)
	a := reduced(t, p, "det([a,b;c,d])", systemCtx)
	b := reduced(t, p, "a*d-b*c", systemCtx)
	if !a.Identical(b) {
		t.Errorf("det reduced to %v, want %v", a, b)
	}
}
