package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjStoreCreatesRootFirst(t *testing.T) {
	store := newObjStore()
	assert.EqualValues(t, 1, store.root.UID())
	obj, ok := store.Object(1)
	require.True(t, ok)
	assert.Same(t, store.root, obj)
}

func TestCreateObjectAssignsMonotonicUIDs(t *testing.T) {
	store := newObjStore()
	a := store.createObject(&Integer{Value: 1})
	b := store.createObject(&Integer{Value: 2})
	c := store.createObject(&Name{Value: "X"})
	assert.Equal(t, a.UID()+1, b.UID())
	assert.Equal(t, b.UID()+1, c.UID())
}

func TestCreateObjectPanicsOnUnhandledType(t *testing.T) {
	store := newObjStore()
	assert.Panics(t, func() {
		store.createObject(nil)
	})
}

func TestRegisterAndLookupIndirect(t *testing.T) {
	store := newObjStore()
	dict := store.createObject(newDictionary()).(*Dictionary)
	id := Identifier{Num: 7, Gen: 0}
	ind := store.createObject(&Indirect{Identifier: id, Direct: dict}).(*Indirect)
	store.registerIndirect(ind)

	got, ok := store.Indirect(id)
	require.True(t, ok)
	assert.Same(t, ind, got)

	_, ok = store.Indirect(Identifier{Num: 8, Gen: 0})
	assert.False(t, ok)
}

func TestRefDerefFollowsIndirect(t *testing.T) {
	store := newObjStore()
	target := store.createObject(&Integer{Value: 42}).(*Integer)
	id := Identifier{Num: 1, Gen: 0}
	ind := store.createObject(&Indirect{Identifier: id, Direct: target}).(*Indirect)

	ref := &Ref{Identifier: id}
	assert.Nil(t, ref.Deref())

	ref.Indirect = ind
	v, ok := ref.Deref().(*Integer)
	require.True(t, ok)
	assert.EqualValues(t, 42, v.Value)
}

func TestDictionaryPreservesKeyOrderAndDedupes(t *testing.T) {
	dict := newDictionary()
	dict.set("Type", &Name{Value: "Page"})
	dict.set("Parent", &Integer{Value: 1})
	dict.set("Type", &Name{Value: "Overwritten"})

	assert.Equal(t, []string{"Type", "Parent"}, dict.Keys)
	assert.Equal(t, "Overwritten", NameValue(dict.Get("Type")))
}

func TestDictGetDereferencesRef(t *testing.T) {
	store := newObjStore()
	target := store.createObject(&Name{Value: "Catalog"}).(*Name)
	id := Identifier{Num: 3, Gen: 0}
	ind := store.createObject(&Indirect{Identifier: id, Direct: target}).(*Indirect)

	dict := newDictionary()
	dict.set("Type", &Ref{Identifier: id, Indirect: ind})

	assert.Equal(t, "Catalog", NameValue(DictGet(dict, "Type")))
}

func TestDictGetNilDictionaryReturnsNil(t *testing.T) {
	assert.Nil(t, DictGet(nil, "Type"))
}

func TestNameValueAndIntegerValueWrongKind(t *testing.T) {
	assert.Equal(t, "", NameValue(&Integer{Value: 1}))
	_, ok := IntegerValue(&Name{Value: "X"})
	assert.False(t, ok)
}

func TestIdentifierValidity(t *testing.T) {
	assert.True(t, Identifier{Num: 1, Gen: 0}.Valid())
	assert.False(t, Identifier{Num: -1, Gen: -1}.Valid())
	assert.Equal(t, "1/0", Identifier{Num: 1, Gen: 0}.String())
}
