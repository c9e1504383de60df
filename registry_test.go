package typedprefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_NotInitialized(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	rows := MustDefine(reg, "number_of_rows", Literal[int32](10))

	assert.Equal(t, "number_of_rows", rows.Key(), "Key works before Init")
	assert.False(t, reg.Initialized())

	_, err := rows.DefaultValue()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = rows.Get(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, rows.Set(ctx, 1), ErrNotInitialized)
	assert.ErrorIs(t, rows.Clear(ctx), ErrNotInitialized)
	_, err = rows.Descriptor().Domain()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = reg.Describe()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, reg.ClearAll(ctx), ErrNotInitialized)
}

func TestRegistry_Init(t *testing.T) {
	reg := newTestRegistry()
	store := NewMockStorage()
	resolver := NewMockResolver(nil)

	assert.ErrorIs(t, reg.Init(nil, resolver), ErrInvalidInput)

	require.NoError(t, reg.Init(store, resolver))
	assert.True(t, reg.Initialized())

	assert.NoError(t, reg.Init(store, resolver), "same binding is a no-op")
	assert.ErrorIs(t, reg.Init(NewMockStorage(), resolver), ErrAlreadyInitialized)
	assert.ErrorIs(t, reg.Init(store, NewMockResolver(nil)), ErrAlreadyInitialized)
}

func TestRegistry_DefineErrors(t *testing.T) {
	reg := newTestRegistry()

	_, err := Define(reg, "  ", Literal("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Define(reg, "dup", Literal("x"))
	require.NoError(t, err)
	_, err = Define(reg, "dup", Literal[int32](1))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = Define(reg, "count", Literal[int32](1), WithDomain("1"))
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = Define(reg, "method", Literal("PATCH"), WithDomain("GET", "POST"))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Define(reg, "secret", Literal(""), Encrypted())
	assert.ErrorIs(t, err, ErrEncryptionUnavailable)

	_, err = Define(reg, "flag", Literal(false), Encrypted())
	assert.ErrorIs(t, err, ErrInvalidType)

	assert.Panics(t, func() { MustDefine(reg, "dup", Literal("y")) })

	require.NoError(t, reg.Init(NewMockStorage(), nil))
	_, err = Define(reg, "late", Literal("x"))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestRegistry_DeclarationOrderAndLookup(t *testing.T) {
	reg := newTestRegistry()
	MustDefine(reg, "number_of_columns", Literal[int32](3))
	MustDefine(reg, "number_of_rows", FromResource[int32](1))
	MustDefine(reg, "primary_color", FromResource[Color](2))

	var keys []string
	for _, d := range reg.Descriptors() {
		keys = append(keys, d.Key())
	}
	assert.Equal(t, []string{"number_of_columns", "number_of_rows", "primary_color"}, keys)

	d, ok := reg.Lookup("number_of_rows")
	require.True(t, ok)
	assert.Equal(t, IntType, d.Type())
	assert.Equal(t, "NumberOfRows", d.Name())
	id, ok := d.ResourceID()
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_Describe(t *testing.T) {
	reg := newTestRegistry()
	MustDefine(reg, "number_of_columns", Literal[int32](3), WithCategory("layout"), WithDescription("Columns"))
	MustDefine(reg, "server_url", FromResource[string](99))
	MustDefine(reg, "request_method", Literal("GET"), WithDomain("GET", "POST"))
	require.NoError(t, reg.Init(NewMockStorage(), NewMockResolver(nil)))

	infos, err := reg.Describe()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, "NumberOfColumns", infos[0].Name)
	assert.Equal(t, int32(3), infos[0].Default)
	assert.Equal(t, DefaultLiteral, infos[0].Source)
	assert.Equal(t, "layout", infos[0].Category)
	assert.Equal(t, "Columns", infos[0].Description)

	assert.Equal(t, 99, infos[1].ResourceID)
	assert.ErrorIs(t, infos[1].DefaultErr, ErrResolution)

	assert.Equal(t, []string{"GET", "POST"}, infos[2].Domain)
}

func TestRegistry_TestModeReset(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(WithTestMode())
	rows := MustDefine(reg, "number_of_rows", FromResource[int32](42))

	first := NewMockResolver(map[int]any{42: "10"})
	require.NoError(t, reg.Init(NewMockStorage(), first))
	v, err := rows.DefaultValue()
	require.NoError(t, err)
	assert.Equal(t, int32(10), v)

	second := NewMockResolver(map[int]any{42: 20})
	require.NoError(t, reg.Init(NewMockStorage(), second))
	v, err = rows.DefaultValue()
	require.NoError(t, err)
	assert.Equal(t, int32(20), v, "rebinding resets resolved defaults")
	assert.Equal(t, 1, first.Calls())
	assert.Equal(t, 1, second.Calls())

	require.NoError(t, rows.Set(ctx, 5))
	got, err := rows.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(5), got)
}

func TestRegistry_TestModeResetEvictsCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCache()
	reg := newTestRegistry(WithTestMode(), WithCache(cache, 0))
	s := MustDefine(reg, "s", Literal("a"))

	require.NoError(t, reg.Init(NewMockStorage(), nil))
	require.NoError(t, s.Set(ctx, "b"))
	assert.Equal(t, 1, cache.len())

	require.NoError(t, reg.Init(NewMockStorage(), nil))
	assert.Zero(t, cache.len())
	v, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestRegistry_ClearAllAndClose(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	a := MustDefine(reg, "a", Literal("x"))
	b := MustDefine(reg, "b", Literal(false))
	store := NewMockStorage()
	require.NoError(t, reg.Init(store, nil))

	require.NoError(t, a.Set(ctx, "y"))
	require.NoError(t, b.Set(ctx, true))
	require.NoError(t, reg.ClearAll(ctx))

	av, err := a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", av)
	bv, err := b.Get(ctx)
	require.NoError(t, err)
	assert.False(t, bv)

	require.NoError(t, reg.Close())
	assert.False(t, reg.Initialized())
	_, err = a.Get(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSameInstance(t *testing.T) {
	s := NewMockStorage()
	assert.True(t, sameInstance(nil, nil))
	assert.True(t, sameInstance(s, s))
	assert.False(t, sameInstance(s, NewMockStorage()))
	assert.False(t, sameInstance(s, nil))

	// Uncomparable dynamic types must not panic.
	assert.False(t, sameInstance(funcResolver(nil), funcResolver(nil)))
}

type funcResolver func(int) (any, error)

func (f funcResolver) Resolve(id int) (any, error) { return f(id) }

func TestRegistry_InitAfterClose(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	a := MustDefine(reg, "a", Literal("x"))
	require.NoError(t, reg.Init(NewMockStorage(), nil))
	require.NoError(t, reg.Close())

	assert.ErrorIs(t, reg.Init(NewMockStorage(), nil), ErrAlreadyInitialized)
	assert.False(t, reg.Initialized())
	_, err := a.Get(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, a.Set(ctx, "y"), ErrNotInitialized)
}

func TestRegistry_TestModeInitAfterClose(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(WithTestMode())
	a := MustDefine(reg, "a", Literal("x"))
	require.NoError(t, reg.Init(NewMockStorage(), nil))
	require.NoError(t, reg.Close())

	require.NoError(t, reg.Init(NewMockStorage(), nil))
	require.NoError(t, a.Set(ctx, "y"))
	v, err := a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "y", v)
}
