package model

// StrPtr returns a pointer to s
func StrPtr(s string) *string {
	return &s
}

// StrVal safely dereferences p, returning "" for nil
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
