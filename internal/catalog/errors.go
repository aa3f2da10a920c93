package catalog

import "fmt"

// UnknownOptionError reports a vendor option code with no entry in a static table.
type UnknownOptionError struct {
	Table string
	Code  string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q in %s table", e.Code, e.Table)
}

func unknown(table string, code interface{}) *UnknownOptionError {
	return &UnknownOptionError{Table: table, Code: fmt.Sprint(code)}
}
