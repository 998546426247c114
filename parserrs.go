package symbolic

import (
	"fmt"
	"strconv"
)

// InputError is an error caused by malformed input. Every error the parser
// returns for bad text implements it.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the offending token.
	Pos() int
}

// OperatorError reports an operator token in a place where it cannot apply.
type OperatorError struct {
	Col      int
	Operator string
	// Unary is whether the parser was expecting a prefix operator.
	Unary bool
}

func (err *OperatorError) Error() string {
	if err.Unary {
		return errpos(err.Col, strconv.Quote(err.Operator)+" is not a unary operator")
	}
	return errpos(err.Col, strconv.Quote(err.Operator)+" is not a binary operator")
}

// BracketError reports unbalanced brackets. Left is empty for a closing
// bracket with no partner, and Right is empty when the input ends inside a
// bracket.
type BracketError struct {
	Col         int
	Left, Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return errpos(err.Col, "unmatched closing bracket "+err.Right)
	case err.Right == "":
		return errpos(err.Col, "bracket "+err.Left+" is never closed")
	default:
		return errpos(err.Col, "bracket "+err.Left+" closed by "+err.Right)
	}
}

// SeparatorError reports a comma or semicolon outside of an argument list or
// matrix, or in a position where it separates nothing.
type SeparatorError struct {
	Col int
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "unexpected separator "+strconv.Quote(err.Sep))
}

// CallError reports a call with a number of arguments the function does not
// accept. Col is the end of the call.
type CallError struct {
	Col  int
	Func string
	Len  int
}

func (err *CallError) Error() string {
	return errpos(err.Col, fmt.Sprintf("%s does not take %d arguments in a call", err.Func, err.Len))
}

// EmptyExpressionError reports a missing operand or argument. End is the
// token that arrived instead, or empty at the end of input.
type EmptyExpressionError struct {
	Col int
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return errpos(err.Col, "empty expression before "+strconv.Quote(err.End))
	case err.Col <= 1:
		return errpos(err.Col, "empty expression")
	default:
		return errpos(err.Col, "empty expression at end of input")
	}
}

// MatrixError reports a matrix literal with rows of different lengths.
type MatrixError struct {
	Col int
	// Want is the length of the first row and Got the length of the row
	// ending at Col.
	Want, Got int
}

func (err *MatrixError) Error() string {
	return errpos(err.Col, fmt.Sprintf("matrix rows differ in length: first has %d, this has %d", err.Want, err.Got))
}

// VariableError reports a binding function such as sum or int whose second
// argument is not a plain symbol.
type VariableError struct {
	Col  int
	Func string
}

func (err *VariableError) Error() string {
	return errpos(err.Col, err.Func+" needs a variable as its second argument")
}

func (err *OperatorError) Pos() int        { return err.Col }
func (err *BracketError) Pos() int         { return err.Col }
func (err *SeparatorError) Pos() int       { return err.Col }
func (err *CallError) Pos() int            { return err.Col }
func (err *EmptyExpressionError) Pos() int { return err.Col }
func (err *MatrixError) Pos() int          { return err.Col }
func (err *VariableError) Pos() int        { return err.Col }

func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
	_ InputError = (*MatrixError)(nil)
	_ InputError = (*VariableError)(nil)
)
