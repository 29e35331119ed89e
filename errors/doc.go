/*
Package errors implements the coded errors used across the dispenser.

Reuse the root errors declared in this package whenever possible and register
a custom root error only when an extension needs a distinct ABCI code. Use
Register(code, description) to declare one.

For reusing errors use ErrXyz.New and ErrXyz.Newf or Wrap(ErrXyz, "...") at
the point of creation so that a stack trace is attached. Only the innermost
wrap records the stack trace. Do not declare wrapped errors as package level
variables, the stack trace would point to the package initialization.

Once you have an error, you can use fmt to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
