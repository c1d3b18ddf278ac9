// Package exact implements an exact-arithmetic expression calculator.
//
// All arithmetic is performed on arbitrary-precision rationals; the package
// never falls back to floating point. Expressions that cannot be fully
// reduced, because a variable is unbound or a definition refers to itself,
// evaluate to a residual symbolic expression rather than an error.
//
// The syntax is intended to be close to math you'd write in your notes.
// Adjacent terms multiply, so "2 x" is a product, and it binds more tightly
// than explicit "*" and "/": "1/2b" is 1/(2·b), not (1/2)·b. Known functions
// apply to a bare operand, so "floor 3.5" is floor(3.5). Assignments with
// ":=" or "=" bind names for the rest of a session, including definitions
// like "f(x) := x^2 + 1".
//
// Rationals render as minimal decimals with repeating cycles marked in
// parentheses: 1/6 is "0.1(6)", and ParseDecimal reconstructs the exact
// value from that form.
package exact
