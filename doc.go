// Package formula implements the quantity formulas attached to phase items.
//
// A formula is plain arithmetic over numbers and named variables: the four
// operators + - * /, unary minus, and parentheses. "length*2" or
// "(endPk-startPk)/20*sideFactor" are typical. There are no functions and no
// exponentiation.
//
// Formulas compile once to a Program in postfix order, which can then be
// evaluated any number of times against different Bindings. BuildBindings
// produces the bindings for an interval of an alignment, so a formula can
// refer to its length, its side, and any extra inputs recorded for it.
//
// Every failure is an error value with a Kind. Structural errors (lexing and
// parsing) mean the text of the formula must change; semantic errors
// (evaluation) depend on the bindings and may go away with other inputs.
// Evaluation never yields an infinity or NaN.
package formula
