package mir

// Operand is a value consumed by an rvalue: either the current
// contents of a place or a constant.
type Operand struct {
	place    Place
	hasPlace bool
}

// Copy returns an operand reading the given place.
func Copy(p Place) Operand {
	return Operand{place: p, hasPlace: true}
}

// Const returns an operand with no backing place.
func Const() Operand {
	return Operand{}
}

// Place returns the operand's place, if it has one.
func (o Operand) Place() (Place, bool) {
	return o.place, o.hasPlace
}

// Rvalue is the right-hand side of an assignment. Operands returns
// the places the rvalue reads when evaluated; shapes that only take
// an address or inspect metadata (Ref, Len, Discriminant, Nullary,
// ThreadLocalRef) read nothing. Shapes outside the recognized list
// are represented by Opaque, which conservatively reads nothing.
type Rvalue interface {
	Operands() []Place
	rvalue()
}

type rtag struct{}

func (rtag) rvalue() {}

func operandPlaces(ops ...Operand) []Place {
	var places []Place
	for _, o := range ops {
		if p, ok := o.Place(); ok {
			places = append(places, p)
		}
	}
	return places
}

// Use is a plain copy or move of an operand.
type Use struct {
	rtag
	X Operand
}

func (r Use) Operands() []Place { return operandPlaces(r.X) }

// Repeat fills an array with copies of an operand.
type Repeat struct {
	rtag
	X Operand
}

func (r Repeat) Operands() []Place { return operandPlaces(r.X) }

// Cast is a numeric or pointer conversion.
type Cast struct {
	rtag
	X Operand
}

func (r Cast) Operands() []Place { return operandPlaces(r.X) }

// UnaryOp applies a unary operator to an operand.
type UnaryOp struct {
	rtag
	X Operand
}

func (r UnaryOp) Operands() []Place { return operandPlaces(r.X) }

// BoxInit initializes a fresh heap cell with an operand.
type BoxInit struct {
	rtag
	X Operand
}

func (r BoxInit) Operands() []Place { return operandPlaces(r.X) }

// BinaryOp applies a binary operator, checked or not.
type BinaryOp struct {
	rtag
	X, Y    Operand
	Checked bool
}

func (r BinaryOp) Operands() []Place { return operandPlaces(r.X, r.Y) }

// Aggregate constructs a composite value, one operand per field.
type Aggregate struct {
	rtag
	Fields []Operand
}

func (r Aggregate) Operands() []Place { return operandPlaces(r.Fields...) }

// CopyForDeref reads a place directly so a later statement can
// dereference the copy.
type CopyForDeref struct {
	rtag
	X Place
}

func (r CopyForDeref) Operands() []Place { return []Place{r.X} }

// Ref takes the address of a place without reading it.
type Ref struct {
	rtag
	X Place
}

func (Ref) Operands() []Place { return nil }

// Len reads the length of an array-like place without reading its
// contents.
type Len struct {
	rtag
	X Place
}

func (Len) Operands() []Place { return nil }

// Discriminant reads a sum type's tag.
type Discriminant struct {
	rtag
	X Place
}

func (Discriminant) Operands() []Place { return nil }

// Nullary produces a value from no operands (sizeof and friends).
type Nullary struct{ rtag }

func (Nullary) Operands() []Place { return nil }

// ThreadLocalRef takes the address of a thread-local.
type ThreadLocalRef struct{ rtag }

func (ThreadLocalRef) Operands() []Place { return nil }

// Opaque stands in for any right-hand side the front end does not
// model. It contributes no places, which is the conservative choice
// for both analyses.
type Opaque struct{ rtag }

func (Opaque) Operands() []Place { return nil }
