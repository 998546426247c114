// Package symbolic implements the symbolic core of a calculator: expression
// trees in a fixed-size node pool, reduction to a canonical simplified form,
// numeric approximation over complex numbers, and display layouts.
//
// Every tree lives in a Pool, which never grows. Operations that need nodes
// fail with ErrPoolExhausted when the pool is full, and long operations take
// a context.Context and stop with ErrInterrupted when it is cancelled. Either
// way, trees are left consistent.
//
// The syntax of expressions is intended to be similar to math you'd write in
// your notes. "2x y" is a product of three terms, as is "{2}(x)y".
// "-2^2^n" is the same as "-(2^(2^n))". Square brackets hold matrices, with
// commas between entries and semicolons between rows: "[1,2;3,4]".
//
// Symbols and functions can be defined in a Context, such as a SymbolTable.
// Reduction substitutes their definitions when symbolic computation is on;
// approximation always does.
package symbolic
