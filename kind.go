package symbolic

import "strconv"

// Kind identifies the operator or value category of an expression node. The
// set of kinds is closed. The numeric order of kinds is the type order used by
// SimplificationOrder.
type Kind uint8

const (
	Uninitialized Kind = iota
	Undefined
	Unreal
	Rational
	Decimal
	Float
	Infinity
	Multiplication
	MultiplicationImplicit
	Power
	Addition
	Factorial
	Division
	Constant
	Symbol
	Store
	Equal
	Sine
	Cosine
	Tangent
	AbsoluteValue
	ArcCosine
	ArcSine
	ArcTangent
	BinomialCoefficient
	Ceiling
	ComplexArgument
	ComplexPolar
	Conjugate
	Derivative
	Determinant
	DivisionQuotient
	DivisionRemainder
	Factor
	Floor
	FracPart
	Function
	GreatCommonDivisor
	HyperbolicArcCosine
	HyperbolicArcSine
	HyperbolicArcTangent
	HyperbolicCosine
	HyperbolicSine
	HyperbolicTangent
	ImaginaryPart
	Integral
	LeastCommonMultiple
	Logarithm
	MatrixTrace
	NaperianLogarithm
	NthRoot
	Opposite
	Parenthesis
	PermuteCoefficient
	Product
	Random
	Randint
	RealPart
	Round
	SignFunction
	SquareRoot
	Subtraction
	Sum
	ComplexCartesian
	ConfidenceInterval
	MatrixDimension
	MatrixIdentity
	MatrixInverse
	MatrixTranspose
	PredictionInterval
	Matrix
	EmptyExpression

	numKinds
)

// variadic marks a kind with no upper bound on its number of children.
const variadic = -1

// kindInfo is the static description of a kind.
type kindInfo struct {
	// name is the kind's name for String and, for function-like kinds, the
	// function name used in text and layouts.
	name string
	// fn is the callable name for function-like kinds, or "" for kinds with
	// their own notation.
	fn string
	// min and max bound the number of children. max is variadic for n-ary
	// kinds.
	min, max int
	// binding marks kinds whose second child is a bound variable. Only
	// their bounds are reduced before the node itself.
	binding bool
}

var kinds = [numKinds]kindInfo{
	Uninitialized:          {name: "Uninitialized"},
	Undefined:              {name: "Undefined"},
	Unreal:                 {name: "Unreal"},
	Rational:               {name: "Rational"},
	Decimal:                {name: "Decimal"},
	Float:                  {name: "Float"},
	Infinity:               {name: "Infinity"},
	Multiplication:         {name: "Multiplication", min: 1, max: variadic},
	MultiplicationImplicit: {name: "MultiplicationImplicit", min: 2, max: 2},
	Power:                  {name: "Power", min: 2, max: 2},
	Addition:               {name: "Addition", min: 1, max: variadic},
	Factorial:              {name: "Factorial", min: 1, max: 1},
	Division:               {name: "Division", min: 2, max: 2},
	Constant:               {name: "Constant"},
	Symbol:                 {name: "Symbol"},
	Store:                  {name: "Store", min: 2, max: 2},
	Equal:                  {name: "Equal", min: 2, max: 2},
	Sine:                   {name: "Sine", fn: "sin", min: 1, max: 1},
	Cosine:                 {name: "Cosine", fn: "cos", min: 1, max: 1},
	Tangent:                {name: "Tangent", fn: "tan", min: 1, max: 1},
	AbsoluteValue:          {name: "AbsoluteValue", fn: "abs", min: 1, max: 1},
	ArcCosine:              {name: "ArcCosine", fn: "acos", min: 1, max: 1},
	ArcSine:                {name: "ArcSine", fn: "asin", min: 1, max: 1},
	ArcTangent:             {name: "ArcTangent", fn: "atan", min: 1, max: 1},
	BinomialCoefficient:    {name: "BinomialCoefficient", fn: "binomial", min: 2, max: 2},
	Ceiling:                {name: "Ceiling", fn: "ceil", min: 1, max: 1},
	ComplexArgument:        {name: "ComplexArgument", fn: "arg", min: 1, max: 1},
	ComplexPolar:           {name: "ComplexPolar", fn: "polar", min: 2, max: 2},
	Conjugate:              {name: "Conjugate", fn: "conj", min: 1, max: 1},
	Derivative:             {name: "Derivative", fn: "diff", min: 3, max: 3, binding: true},
	Determinant:            {name: "Determinant", fn: "det", min: 1, max: 1},
	DivisionQuotient:       {name: "DivisionQuotient", fn: "quo", min: 2, max: 2},
	DivisionRemainder:      {name: "DivisionRemainder", fn: "rem", min: 2, max: 2},
	Factor:                 {name: "Factor", fn: "factor", min: 1, max: 1},
	Floor:                  {name: "Floor", fn: "floor", min: 1, max: 1},
	FracPart:               {name: "FracPart", fn: "frac", min: 1, max: 1},
	Function:               {name: "Function", min: 1, max: 1},
	GreatCommonDivisor:     {name: "GreatCommonDivisor", fn: "gcd", min: 2, max: 2},
	HyperbolicArcCosine:    {name: "HyperbolicArcCosine", fn: "acosh", min: 1, max: 1},
	HyperbolicArcSine:      {name: "HyperbolicArcSine", fn: "asinh", min: 1, max: 1},
	HyperbolicArcTangent:   {name: "HyperbolicArcTangent", fn: "atanh", min: 1, max: 1},
	HyperbolicCosine:       {name: "HyperbolicCosine", fn: "cosh", min: 1, max: 1},
	HyperbolicSine:         {name: "HyperbolicSine", fn: "sinh", min: 1, max: 1},
	HyperbolicTangent:      {name: "HyperbolicTangent", fn: "tanh", min: 1, max: 1},
	ImaginaryPart:          {name: "ImaginaryPart", fn: "im", min: 1, max: 1},
	Integral:               {name: "Integral", fn: "int", min: 4, max: 4, binding: true},
	LeastCommonMultiple:    {name: "LeastCommonMultiple", fn: "lcm", min: 2, max: 2},
	Logarithm:              {name: "Logarithm", fn: "log", min: 2, max: 2},
	MatrixTrace:            {name: "MatrixTrace", fn: "trace", min: 1, max: 1},
	NaperianLogarithm:      {name: "NaperianLogarithm", fn: "ln", min: 1, max: 1},
	NthRoot:                {name: "NthRoot", fn: "root", min: 2, max: 2},
	Opposite:               {name: "Opposite", min: 1, max: 1},
	Parenthesis:            {name: "Parenthesis", min: 1, max: 1},
	PermuteCoefficient:     {name: "PermuteCoefficient", fn: "permute", min: 2, max: 2},
	Product:                {name: "Product", fn: "product", min: 4, max: 4, binding: true},
	Random:                 {name: "Random", fn: "random"},
	Randint:                {name: "Randint", fn: "randint", min: 2, max: 2},
	RealPart:               {name: "RealPart", fn: "re", min: 1, max: 1},
	Round:                  {name: "Round", fn: "round", min: 2, max: 2},
	SignFunction:           {name: "SignFunction", fn: "sign", min: 1, max: 1},
	SquareRoot:             {name: "SquareRoot", fn: "sqrt", min: 1, max: 1},
	Subtraction:            {name: "Subtraction", min: 2, max: 2},
	Sum:                    {name: "Sum", fn: "sum", min: 4, max: 4, binding: true},
	ComplexCartesian:       {name: "ComplexCartesian", fn: "complex", min: 2, max: 2},
	ConfidenceInterval:     {name: "ConfidenceInterval", fn: "confidence", min: 2, max: 2},
	MatrixDimension:        {name: "MatrixDimension", fn: "dim", min: 1, max: 1},
	MatrixIdentity:         {name: "MatrixIdentity", fn: "identity", min: 1, max: 1},
	MatrixInverse:          {name: "MatrixInverse", fn: "inverse", min: 1, max: 1},
	MatrixTranspose:        {name: "MatrixTranspose", fn: "transpose", min: 1, max: 1},
	PredictionInterval:     {name: "PredictionInterval", fn: "prediction", min: 2, max: 2},
	Matrix:                 {name: "Matrix", min: 1, max: variadic},
	EmptyExpression:        {name: "EmptyExpression"},
}

func (k Kind) String() string {
	if k >= numKinds {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kinds[k].name
}

// Kinds returns every valid kind in type order.
func Kinds() []Kind {
	r := make([]Kind, 0, numKinds-1)
	for k := Undefined; k < numKinds; k++ {
		r = append(r, k)
	}
	return r
}

// arityOK returns whether n children is a legal arity for k.
func (k Kind) arityOK(n int) bool {
	i := kinds[k]
	return n >= i.min && (i.max == variadic || n <= i.max)
}

// isNumber returns whether k is a numeric literal kind.
func (k Kind) isNumber() bool {
	switch k {
	case Rational, Decimal, Float, Infinity:
		return true
	}
	return false
}

// isMultiplication covers both explicit and implicit products.
func (k Kind) isMultiplication() bool {
	return k == Multiplication || k == MultiplicationImplicit
}

// isMatrixValued returns whether a node of kind k denotes a matrix rather
// than a scalar.
func (k Kind) isMatrixValued() bool {
	switch k {
	case Matrix, MatrixIdentity, MatrixInverse, MatrixTranspose, MatrixDimension, ConfidenceInterval, PredictionInterval:
		return true
	}
	return false
}

// isRandom returns whether k yields a fresh value each time it is approximated.
func (k Kind) isRandom() bool {
	return k == Random || k == Randint
}
