package printf

// -----------------------------------------------------------------------------

// Category is the coarse argument class a conversion letter asks for.
type Category int

const (
	String Category = iota
	Int
	Real
	Pointer
)

var categoryNames = [...]string{
	String:  "STRING",
	Int:     "INT",
	Real:    "REAL",
	Pointer: "POINTER",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Category(?)"
}

// -----------------------------------------------------------------------------

// Class is the outcome of classifying one character after a '%'.
type Class int

const (
	ClassInvalid  Class = iota
	ClassCategory       // a conversion letter; see Category
	ClassFiller         // flag, width or precision char: keep scanning
	ClassVarWidth       // '*' right after '%': borrows an INT argument
)

var letters = [256]struct {
	ok  bool
	cat Category
}{
	'i': {true, Int}, 'd': {true, Int}, 'o': {true, Int},
	'x': {true, Int}, 'X': {true, Int}, 'c': {true, Int},

	'f': {true, Real}, 'F': {true, Real}, 'e': {true, Real},
	'E': {true, Real}, 'a': {true, Real}, 'A': {true, Real},

	's': {true, String},
	'p': {true, Pointer},
}

// Classify classifies format[pos], which must follow an unescaped '%' or a
// filler char. Reading past the end of format yields ClassInvalid.
func Classify(format string, pos int) (Class, Category) {
	if pos < 0 || pos >= len(format) {
		return ClassInvalid, 0
	}
	c := format[pos]
	if l := letters[c]; l.ok {
		return ClassCategory, l.cat
	}
	switch c {
	case '*':
		if pos > 0 && format[pos-1] == '%' {
			return ClassVarWidth, 0
		}
		return ClassFiller, 0
	case '-', '+', ' ', '#', '.':
		return ClassFiller, 0
	}
	if c >= '0' && c <= '9' {
		return ClassFiller, 0
	}
	return ClassInvalid, 0
}

// -----------------------------------------------------------------------------
