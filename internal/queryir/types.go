package queryir

// Field names a filterable column of the runs table.
type Field string

const (
	FieldStatus        Field = "status"
	FieldProgramHash   Field = "program_hash"
	FieldSourcePath    Field = "source_path"
	FieldErrorCode     Field = "error_code"
	FieldEngineVersion Field = "engine_version"
	FieldSteps         Field = "steps"
	FieldBytesOut      Field = "bytes_out"
)

// Kind is the value type a field compares against.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindCount
)

var fieldKinds = map[Field]Kind{
	FieldStatus:        KindText,
	FieldProgramHash:   KindText,
	FieldSourcePath:    KindText,
	FieldErrorCode:     KindText,
	FieldEngineVersion: KindText,
	FieldSteps:         KindCount,
	FieldBytesOut:      KindCount,
}

// Kind returns the value type of f, or KindUnknown for unknown fields.
func (f Field) Kind() Kind {
	return fieldKinds[f]
}

// Predicate is a filter condition over runs.
//
// Predicate types:
//   - Equals: text field = value
//   - AtLeast: count field >= value
//   - And: every predicate holds
type Predicate interface {
	predicateNode()
}

// Select returns runs matching Filter, newest first.
//
// A nil Filter matches every run. A Limit of zero or less returns all
// matching runs.
type Select struct {
	Filter Predicate
	Limit  int
}

// Equals matches runs whose text field equals Value exactly.
type Equals struct {
	Field Field
	Value string
}

func (Equals) predicateNode() {}

// AtLeast matches runs whose count field is greater than or equal to Value.
type AtLeast struct {
	Field Field
	Value int64
}

func (AtLeast) predicateNode() {}

// And matches runs satisfying all Predicates. An empty And matches every run.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// AllOf returns the conjunction of the non-nil predicates in ps.
//
// Returns nil when no predicate remains and the single predicate itself
// when only one does.
func AllOf(ps ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
