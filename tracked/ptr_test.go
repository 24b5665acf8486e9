package tracked

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// resetRegistries isolates the default registries for one test.
func resetRegistries(t testing.TB) {
	t.Helper()
	ResetAll()
	t.Cleanup(ResetAll)
}

func requireFault(t *testing.T, fn func()) *Fault {
	t.Helper()
	f := Catch(fn)
	require.NotNil(t, f, "expected an invariant fault")
	require.ErrorIs(t, f, ErrInvariant)
	return f
}

// Test_Scenario_ArrayCopy walks bind, clone and two releases of a 5-element array.
func Test_Scenario_ArrayCopy(t *testing.T) {
	resetRegistries(t)
	baseline := Live[int]()

	block := []int{1, 2, 3, 4, 5}
	h1 := BindArray(block)
	require.Equal(t, uint(1), h1.Refs())
	require.Equal(t, baseline+1, Live[int]())

	h2 := h1.Clone()
	require.Equal(t, uint(2), h2.Refs())

	h1.Release()
	require.True(t, h1.IsNil())
	require.Equal(t, uint(1), h2.Refs())
	require.Equal(t, baseline+1, Live[int](), "sweep must not free a block with count 1")
	require.Equal(t, []int{1, 2, 3, 4, 5}, block)

	h2.Release()
	require.Equal(t, baseline, Live[int]())
	require.Equal(t, []int{0, 0, 0, 0, 0}, block, "heap free zeroes the block")
	require.Equal(t, 1, Default[int]().Stats().Freed)
}

// Test_Scenario_ReassignSweepsImmediately pins the default policy: the old
// block is freed by the reassignment itself.
func Test_Scenario_ReassignSweepsImmediately(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	a, b := new(int), new(int)
	*a, *b = 7, 9

	h := reg.Bind(a)
	require.Equal(t, uint(1), h.Refs())

	h.Reset(b)
	_, tracked := reg.RefCount(addrOf(a))
	require.False(t, tracked, "A must be freed on reassignment")
	require.Zero(t, *a)
	require.Equal(t, uint(1), h.Refs())
	require.Equal(t, 1, reg.Live())

	h.Release()
	require.Zero(t, reg.Live())
}

// Test_Scenario_ReassignDeferred pins the opt-in lazy policy: the orphaned
// block waits for an unrelated release.
func Test_Scenario_ReassignDeferred(t *testing.T) {
	reg := NewRegistry(Options[int]{DeferReassignSweep: true})
	a, b := new(int), new(int)

	h := reg.Bind(a)
	h.Reset(b)

	n, tracked := reg.RefCount(addrOf(a))
	require.True(t, tracked)
	require.Zero(t, n)
	require.Equal(t, 2, reg.Live())

	other := reg.Bind(new(int))
	other.Release()
	_, tracked = reg.RefCount(addrOf(a))
	require.False(t, tracked, "unrelated release sweeps A")
	require.Equal(t, 1, reg.Live())

	h.Release()
	require.Zero(t, reg.Live())
}

func Test_Ptr_ZeroValue(t *testing.T) {
	resetRegistries(t)

	var p Ptr[int]
	require.True(t, p.IsNil())
	require.Nil(t, p.Get())
	require.Zero(t, p.Len())
	require.Zero(t, p.Addr())
	require.Zero(t, p.Refs())
	require.Equal(t, "Ptr(nil)", p.String())
	require.True(t, p.Begin().Equal(p.End()))

	_, err := p.At(0)
	require.ErrorIs(t, err, ErrNilPtr)

	p.Release()
	require.Zero(t, Live[int]())
}

func Test_Ptr_BindNil(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	p := reg.Bind(nil)
	q := reg.BindArray(nil)
	require.True(t, p.IsNil())
	require.True(t, q.IsNil())
	require.Zero(t, reg.Live())

	c := p.Clone()
	require.True(t, c.IsNil())
	require.Zero(t, reg.Stats().Inserted)
}

func Test_Ptr_BindTrackedAddressIncrements(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	x := new(int)

	p := reg.Bind(x)
	q := reg.Bind(x)
	require.Equal(t, uint(2), p.Refs())
	require.Equal(t, 1, reg.Live())

	p.Release()
	q.Release()
	require.Zero(t, reg.Live())
}

func Test_Ptr_Dereference(t *testing.T) {
	type config struct {
		Name  string
		Limit int
	}
	reg := NewRegistry(Options[config]{})
	p := reg.Bind(&config{Name: "a", Limit: 3})
	defer p.Release()

	p.Get().Limit++
	require.Equal(t, 4, p.Value().Limit)
	require.Equal(t, "a", p.Unsafe().Name)
	require.Len(t, p.Slice(), 1)
	require.False(t, p.IsArray())
}

func Test_Ptr_IndexArray(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	p, err := reg.NewArray(5)
	require.NoError(t, err)
	defer p.Release()

	last, err := p.At(4)
	require.NoError(t, err, "index == len-1 is valid")
	*last = 99

	_, err = p.At(5)
	require.ErrorIs(t, err, ErrOutOfRange, "index == len is out of range")
	_, err = p.At(-1)
	require.ErrorIs(t, err, ErrOutOfRange)

	require.Equal(t, 99, p.Slice()[4])
	require.True(t, p.IsArray())
	require.Equal(t, 5, p.Len())
}

func Test_Ptr_IndexScalarRejectsNonZero(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	v := 5
	p := reg.Bind(&v)
	defer p.Release()

	got, err := p.At(0)
	require.NoError(t, err)
	require.Equal(t, 5, *got)

	_, err = p.At(1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func Test_Ptr_Traversal(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	p := reg.BindArray([]int{3, 1, 4})
	defer p.Release()

	c := p.Begin()
	end := p.End()
	require.Equal(t, 3, end.Distance(c))

	sum := 0
	for ; c.Less(end); c.Next() {
		v, err := c.Value()
		require.NoError(t, err)
		sum += v
	}
	require.Equal(t, 8, sum)
	_, err := c.Get()
	require.ErrorIs(t, err, ErrOutOfRange)

	scalar := reg.Bind(new(int))
	defer scalar.Release()
	require.Equal(t, 1, scalar.End().Distance(scalar.Begin()))
}

func Test_Ptr_CursorDoesNotRetain(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	block := []int{1, 2}
	p := reg.BindArray(block)
	c := p.Begin()

	p.Release()
	require.Zero(t, reg.Live(), "a cursor must not keep the record alive")
	_ = c
}

func Test_Ptr_All(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	p := reg.BindArray([]int{1, 2, 3, 4})
	defer p.Release()

	for i, v := range p.All() {
		*v *= 10
		if i == 2 {
			break
		}
	}
	require.Equal(t, []int{10, 20, 30, 4}, p.Slice())
}

func Test_Ptr_Assign(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	a, b := new(int), new(int)

	p := reg.Bind(a)
	q := reg.Bind(b)

	p.Assign(&q)
	_, tracked := reg.RefCount(addrOf(a))
	require.False(t, tracked, "A orphaned by assignment is freed")
	require.Equal(t, uint(2), q.Refs())
	require.Equal(t, q.Addr(), p.Addr())

	p.Assign(&p)
	require.Equal(t, uint(2), q.Refs(), "self-assignment is a no-op")

	var empty Ptr[int]
	empty.reg = reg
	p.Assign(&empty)
	require.True(t, p.IsNil())
	require.Equal(t, uint(1), q.Refs())

	q.Release()
	require.Zero(t, reg.Live())
}

func Test_Ptr_AssignAcrossRegistries(t *testing.T) {
	r1 := NewRegistry(Options[int]{Name: "one"})
	r2 := NewRegistry(Options[int]{Name: "two"})

	p := r1.Bind(new(int))
	q := r2.Bind(new(int))

	p.Assign(&q)
	require.Zero(t, r1.Live())
	require.Equal(t, uint(2), q.Refs())

	p.Release()
	q.Release()
	require.Zero(t, r2.Live())
}

func Test_Ptr_ResetArray(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	p := reg.Bind(new(int))

	p.ResetArray([]int{1, 2, 3})
	require.True(t, p.IsArray())
	require.Equal(t, 3, p.Len())
	require.Equal(t, 1, reg.Live())

	p.ResetArray(nil)
	require.True(t, p.IsNil())
	require.False(t, p.IsArray())
	require.Zero(t, reg.Live())

	p.Reset(nil)
	require.True(t, p.IsNil())
}

func Test_Ptr_ResetToSameAddress(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	x := new(int)
	*x = 11

	p := reg.Bind(x)
	p.Reset(x)
	require.Equal(t, uint(1), p.Refs())
	require.Equal(t, 11, *x, "rebinding the same block must not free it")

	p.Release()
	require.Zero(t, reg.Live())
}

func Test_Ptr_String(t *testing.T) {
	reg := NewRegistry(Options[int]{})
	p := reg.BindArray(make([]int, 2))
	defer p.Release()
	require.Contains(t, p.String(), "[2] refs=1)")

	s := reg.Bind(new(int))
	defer s.Release()
	require.Contains(t, s.String(), "refs=1)")
}
