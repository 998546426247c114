package symbolic_test

import (
	"context"
	"fmt"

	"github.com/zephyrtronium/symbolic"
)

func ExampleExpression_Simplify() {
	p := symbolic.NewPool(256)
	e, err := symbolic.ParseString(p, "x+x+1/2+1/3")
	if err != nil {
		panic(err)
	}
	rc := symbolic.NewReductionContext(nil, symbolic.Cartesian, symbolic.Radian, symbolic.User, true)
	if _, err := e.Simplify(context.Background(), rc); err != nil {
		panic(err)
	}
	fmt.Println(e)

	// Output:
	// 2x+5/6
}

func ExampleSymbolTable() {
	defs := symbolic.NewPool(16)
	two, _ := symbolic.ParseString(defs, "2")
	tbl := symbolic.NewSymbolTable(symbolic.SetVar("a", two))

	p := symbolic.NewPool(64)
	e, _ := symbolic.ParseString(p, "a^2+1")
	rc := symbolic.NewReductionContext(tbl, symbolic.Real, symbolic.Radian, symbolic.System, true)
	e.Reduce(context.Background(), rc)
	fmt.Println(e)

	// Output:
	// 5
}

func ExampleApproximate() {
	p := symbolic.NewPool(16)
	e, _ := symbolic.ParseString(p, "sqrt(2)")
	v, _ := symbolic.Approximate[float64](context.Background(), e, nil, symbolic.Real, symbolic.Radian)
	fmt.Printf("%.6f\n", v.Re)

	// Output:
	// 1.414214
}

func ExampleExpression_CreateLayout() {
	p := symbolic.NewPool(16)
	e, _ := symbolic.ParseString(p, "1/2+x^2")
	l := e.CreateLayout(symbolic.DecimalFormat, 0)
	fmt.Print(l.Kind, ":")
	for _, c := range l.Children {
		fmt.Print(" ", c.Kind)
	}
	fmt.Println()
	fmt.Println(l)

	// Output:
	// Horizontal: Fraction Text Superscript
	// 1/2+x^2
}
