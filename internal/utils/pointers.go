package utils

// Value dereferences v, returning the zero value for nil. Provider payloads
// use null for absent optional fields.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
