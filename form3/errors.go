package form3

import (
	"fmt"
	"runtime/debug"
)

// shapeErr is returned when a must3 constructor panics.
type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Unwrap returns the panic value if it was an error.
func (s *shapeErr) Unwrap() error {
	err, _ := s.panicObj.(error)
	return err
}

// Stack returns the stack trace captured at the moment of the panic.
func (s *shapeErr) Stack() string { return s.stack }

func recoverShape(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}
