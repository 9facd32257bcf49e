package scope

// Fielder is implemented by row-like values that expose named fields.
type Fielder interface {
	Field(name string) (any, bool)
}

// Project reads field from target.
//
//   - A list whose first element is row-like and exposes field yields the list
//     of that field read from every element; elements where the field is
//     missing or nil are omitted.
//   - A single row-like value yields its field.
//   - Anything else is not projected and ok is false.
//
// Project never stores anything; results share values with target.
func Project(target any, field string) (any, bool) {
	switch typed := target.(type) {
	case []any:
		if len(typed) == 0 {
			return nil, false
		}
		first, isRow := typed[0].(Fielder)
		if !isRow {
			return nil, false
		}
		if _, has := first.Field(field); !has {
			return nil, false
		}
		projected := make([]any, 0, len(typed))
		for _, item := range typed {
			row, isRow := item.(Fielder)
			if !isRow {
				continue
			}
			value, has := row.Field(field)
			if !has || value == nil {
				continue
			}
			projected = append(projected, value)
		}
		return projected, true

	case Fielder:
		return typed.Field(field)

	default:
		return nil, false
	}
}
