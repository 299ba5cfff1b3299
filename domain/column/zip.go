package column

import (
	"fmt"

	"github.com/spenczar/quiver/domain/value"
)

// structArray presents several equal-length arrays as one array of
// composite values, one struct per row.
type structArray struct {
	typ      value.Type
	children []Array
	length   int
	nulls    []bool // nil when no child has a null
	nullN    int
}

// Zip combines children into a struct-typed array. typ must be a struct
// type whose fields match the children in count, order and type. A row is
// null when any child is null at that row.
func Zip(typ value.Type, children ...Array) (Array, error) {
	if typ.Kind() != value.KindStruct {
		return nil, fmt.Errorf("column: zip needs a struct type, got %s", typ)
	}
	if typ.NumFields() != len(children) {
		return nil, fmt.Errorf("column: %s has %d fields, got %d arrays", typ, typ.NumFields(), len(children))
	}

	length := 0
	if len(children) > 0 {
		length = children[0].Len()
	}
	for i, c := range children {
		f := typ.Field(i)
		if !c.Type().Equal(f.Type) {
			return nil, fmt.Errorf("column: field %q wants %s, got %s", f.Name, f.Type, c.Type())
		}
		if c.Len() != length {
			return nil, fmt.Errorf("column: field %q has %d rows, want %d", f.Name, c.Len(), length)
		}
	}

	arr := &structArray{typ: typ, children: children, length: length}
	for _, c := range children {
		if c.NullN() == 0 {
			continue
		}
		if arr.nulls == nil {
			arr.nulls = make([]bool, length)
		}
		for i := 0; i < length; i++ {
			if !arr.nulls[i] && c.IsNull(i) {
				arr.nulls[i] = true
				arr.nullN++
			}
		}
	}
	return arr, nil
}

func (a *structArray) Len() int { return a.length }

func (a *structArray) NullN() int { return a.nullN }

func (a *structArray) IsNull(i int) bool { return a.nulls != nil && a.nulls[i] }

func (a *structArray) Type() value.Type { return a.typ }

func (a *structArray) Value(i int) value.Value {
	if a.IsNull(i) {
		return value.Value{}
	}
	members := make([]value.Value, len(a.children))
	for j, c := range a.children {
		members[j] = c.Value(i)
	}
	v, err := value.Struct(a.typ, members...)
	if err != nil {
		// children were type checked in Zip
		panic(err)
	}
	return v
}
