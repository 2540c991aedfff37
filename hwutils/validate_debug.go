//go:build debug_vdbox

package hwutils

// DebugValidate panics if the object's Validate reports an error. Only builds tagged debug_vdbox
// run the check.
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 panics unless value is a power of two. Only builds tagged debug_vdbox run the
// check.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
