package hwutils

// Validatable is anything DebugValidate can check, such as a phase list or a sizing rule
type Validatable interface {
	Validate() error
}
