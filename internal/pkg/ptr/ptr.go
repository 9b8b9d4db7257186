package ptr

import "time"

func To[T any](v T) *T {
	return &v
}

// TimeOrNil maps the zero time to nil.
func TimeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Copy returns a pointer to a copy of *p, or nil.
func Copy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
