package hwutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// ErrResourceExhausted marks a scratch allocation failure. It is fatal for the frame being prepared:
// no command referencing the buffer may be built, and the frame should be treated as dropped.
var ErrResourceExhausted error = errors.New("resource exhausted")

// ErrUnsupportedConfiguration marks a codec mode, hardware generation or feature combination that
// the capability tables do not describe. It is fatal for the frame being prepared.
var ErrUnsupportedConfiguration error = errors.New("unsupported configuration")

// ErrBudgetExceeded is returned when a command would push a buffer past its precomputed budget. It
// means the capacity estimate was not conservative for the configuration being built.
var ErrBudgetExceeded error = errors.New("command budget exceeded")
