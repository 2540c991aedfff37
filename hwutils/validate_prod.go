//go:build !debug_vdbox

package hwutils

// DebugValidate does nothing unless the build is tagged debug_vdbox
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 does nothing unless the build is tagged debug_vdbox
func DebugCheckPow2[T Number](value T, name string) {
}
