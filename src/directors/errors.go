package directors

import "errors"

// ErrSyntax reports a console line that does not fit the command grammar.
var ErrSyntax = errors.New("syntax error")
