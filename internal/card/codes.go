package card

import "fmt"

// Integer codes used by the review UI bridge. The tables are explicit so
// that reordering the constants above never changes the wire values.
var (
	typeToCode = map[Type]int32{
		TypeBasic:         0,
		TypeBasicReversed: 1,
		TypeCloze:         2,
	}
	codeToType = invert(typeToCode)

	statusToCode = map[Status]int32{
		StatusPending:      0,
		StatusApproved:     1,
		StatusRejected:     2,
		StatusRegenerating: 3,
	}
	codeToStatus = invert(statusToCode)
)

func invert[K comparable](m map[K]int32) map[int32]K {
	out := make(map[int32]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// TypeCode returns the UI code of t.
func TypeCode(t Type) (int32, error) {
	code, ok := typeToCode[t]
	if !ok {
		return 0, fmt.Errorf("type %q: %w", t, ErrInvalidType)
	}
	return code, nil
}

// TypeFromCode returns the type for a UI code.
func TypeFromCode(code int32) (Type, error) {
	t, ok := codeToType[code]
	if !ok {
		return "", fmt.Errorf("type code %d: %w", code, ErrInvalidType)
	}
	return t, nil
}

// StatusCode returns the UI code of s.
func StatusCode(s Status) (int32, error) {
	code, ok := statusToCode[s]
	if !ok {
		return 0, fmt.Errorf("status %q: %w", s, ErrInvalidStatus)
	}
	return code, nil
}

// StatusFromCode returns the status for a UI code.
func StatusFromCode(code int32) (Status, error) {
	s, ok := codeToStatus[code]
	if !ok {
		return "", fmt.Errorf("status code %d: %w", code, ErrInvalidStatus)
	}
	return s, nil
}
