package data

// LabelEncoder assigns stable integer codes to categorical values in
// first-seen order. The class list is persisted with the model artifacts
// so single-record encoding at request time reproduces the same integers.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		classes: make([]string, 0),
		index:   make(map[string]int),
	}
}

// EncoderFromClasses rebuilds an encoder from a persisted class list,
// preserving index order.
func EncoderFromClasses(classes []string) *LabelEncoder {
	e := NewLabelEncoder()
	for _, c := range classes {
		e.Fit(c)
	}
	return e
}

// Fit returns the code for v, assigning the next code if v is new.
func (e *LabelEncoder) Fit(v string) int {
	if i, ok := e.index[v]; ok {
		return i
	}
	i := len(e.classes)
	e.classes = append(e.classes, v)
	e.index[v] = i
	return i
}

// Encode returns the code for a previously seen value. The second return
// is false for unknown values; callers must reject those, never default.
func (e *LabelEncoder) Encode(v string) (int, bool) {
	i, ok := e.index[v]
	return i, ok
}

// Classes returns the class list in index order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *LabelEncoder) Len() int {
	return len(e.classes)
}
