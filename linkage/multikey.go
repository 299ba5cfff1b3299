package linkage

import (
	"slices"

	"github.com/spenczar/quiver/domain/column"
	qerrors "github.com/spenczar/quiver/domain/errors"
	"github.com/spenczar/quiver/domain/value"
)

// KeyColumn is one named key array. Multi-key linkages take an ordered
// slice of these; the order fixes the field order of the composite key.
type KeyColumn struct {
	Name  string
	Array column.Array
}

// MultiKeyLinkage links two tables on several key columns at once. Each
// row's key columns are combined into one struct value, and the struct
// values are linked exactly as single keys are.
type MultiKeyLinkage[L Table[L], R Table[R]] struct {
	*Linkage[L, R]

	keyTypes      []value.Field
	compositeType value.Type
}

// NewMultiKey links left and right on the named key columns. Both sides
// must declare the same set of names; the composite field order is the
// order of leftKeys. Checks run in this order: name sets, emptiness, then
// for each key type agreement, nulls and lengths.
func NewMultiKey[L Table[L], R Table[R]](left L, right R, leftKeys, rightKeys []KeyColumn, opts ...Option) (*MultiKeyLinkage[L, R], error) {
	b := newBuilder(opts)

	rightByName, err := checkKeyNames(leftKeys, rightKeys)
	if err != nil {
		return nil, b.fail(err)
	}
	if len(leftKeys) == 0 {
		return nil, b.fail(qerrors.NewEmptyKeySet())
	}

	fields := make([]value.Field, len(leftKeys))
	leftArrays := make([]column.Array, len(leftKeys))
	rightArrays := make([]column.Array, len(leftKeys))
	for i, lk := range leftKeys {
		rk := rightByName[lk.Name]
		if !column.SameType(lk.Array, rk.Array) {
			return nil, b.fail(qerrors.NewKeyTypeMismatch(lk.Name, lk.Array.Type().String(), rk.Array.Type().String()))
		}
		if n := lk.Array.NullN(); n > 0 {
			return nil, b.fail(qerrors.NewNullKeyValue(qerrors.SideLeft, lk.Name, n))
		}
		if n := rk.Array.NullN(); n > 0 {
			return nil, b.fail(qerrors.NewNullKeyValue(qerrors.SideRight, lk.Name, n))
		}
		if lk.Array.Len() != left.Len() {
			return nil, b.fail(qerrors.NewLengthMismatch(qerrors.SideLeft, lk.Name, lk.Array.Len(), left.Len()))
		}
		if rk.Array.Len() != right.Len() {
			return nil, b.fail(qerrors.NewLengthMismatch(qerrors.SideRight, lk.Name, rk.Array.Len(), right.Len()))
		}
		fields[i] = value.Field{Name: lk.Name, Type: lk.Array.Type()}
		leftArrays[i] = lk.Array
		rightArrays[i] = rk.Array
	}

	composite := value.StructType(fields...)
	leftComposite, err := column.Zip(composite, leftArrays...)
	if err != nil {
		return nil, b.fail(err)
	}
	rightComposite, err := column.Zip(composite, rightArrays...)
	if err != nil {
		return nil, b.fail(err)
	}

	l, err := link(b, left, right, leftComposite, rightComposite)
	if err != nil {
		return nil, err
	}
	return &MultiKeyLinkage[L, R]{
		Linkage:       l,
		keyTypes:      fields,
		compositeType: composite,
	}, nil
}

// checkKeyNames verifies that both sides name the same keys, each once,
// and returns the right-hand columns by name.
func checkKeyNames(leftKeys, rightKeys []KeyColumn) (map[string]KeyColumn, error) {
	leftByName, err := keysByName(qerrors.SideLeft, leftKeys)
	if err != nil {
		return nil, err
	}
	rightByName, err := keysByName(qerrors.SideRight, rightKeys)
	if err != nil {
		return nil, err
	}

	mismatch := len(leftByName) != len(rightByName)
	for name := range leftByName {
		if _, ok := rightByName[name]; !ok {
			mismatch = true
			break
		}
	}
	if mismatch {
		return nil, qerrors.NewKeyNameMismatch(sortedNames(rightKeys), sortedNames(leftKeys))
	}
	return rightByName, nil
}

func keysByName(side qerrors.Side, keys []KeyColumn) (map[string]KeyColumn, error) {
	byName := make(map[string]KeyColumn, len(keys))
	for _, k := range keys {
		if k.Name == "" {
			return nil, qerrors.NewBlankKeyName(side)
		}
		if _, dup := byName[k.Name]; dup {
			return nil, qerrors.NewDuplicateKeyName(side, k.Name)
		}
		byName[k.Name] = k
	}
	return byName, nil
}

func sortedNames(keys []KeyColumn) []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	slices.Sort(names)
	return names
}

// KeyTypes returns the composite fields in declaration order
func (m *MultiKeyLinkage[L, R]) KeyTypes() []value.Field {
	return slices.Clone(m.keyTypes)
}

// KeyNames returns the key column names in declaration order
func (m *MultiKeyLinkage[L, R]) KeyNames() []string {
	names := make([]string, len(m.keyTypes))
	for i, f := range m.keyTypes {
		names[i] = f.Name
	}
	return names
}

// CompositeType returns the struct type of the composite key
func (m *MultiKeyLinkage[L, R]) CompositeType() value.Type { return m.compositeType }

// Key builds the composite value for a lookup. fields must name exactly
// the configured key columns. Each entry is either a value.Value of the
// column's type or a Go value convertible to it, such as an int for an
// integer column or a time.Time for a timestamp column.
func (m *MultiKeyLinkage[L, R]) Key(fields map[string]any) (value.Value, error) {
	match := len(fields) == len(m.keyTypes)
	if match {
		for _, f := range m.keyTypes {
			if _, ok := fields[f.Name]; !ok {
				match = false
				break
			}
		}
	}
	if !match {
		have := make([]string, 0, len(fields))
		for name := range fields {
			have = append(have, name)
		}
		slices.Sort(have)
		want := m.KeyNames()
		slices.Sort(want)
		return value.Value{}, qerrors.NewKeyNameMismatch(have, want)
	}

	members := make([]value.Value, len(m.keyTypes))
	for i, f := range m.keyTypes {
		v, err := value.Convert(f.Type, fields[f.Name])
		if err != nil {
			return value.Value{}, qerrors.NewFieldTypeMismatch(f.Name, f.Type.String(), err)
		}
		members[i] = v
	}
	return value.Struct(m.compositeType, members...)
}
