package backend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd"
	"github.com/gogpu/rendercmd/resource"
)

// mockBackend is a minimal backend implementation for testing.
type mockBackend struct {
	name    string
	copies  int
	removed []resource.RenderResource
	flushes int
	closed  bool
}

func newMockBackend(name string) *mockBackend {
	return &mockBackend{name: name}
}

func (b *mockBackend) CopyBufferToBuffer(_ resource.RenderResource, _ uint64, _ resource.RenderResource, _, _ uint64) {
	b.copies++
}

func (b *mockBackend) CopyBufferToTexture(_ resource.RenderResource, _ uint64, _ uint32, _ resource.RenderResource, _ gputypes.Origin3D, _, _ uint32, _ gputypes.Extent3D) {
	b.copies++
}

func (b *mockBackend) Resources() rendercmd.ResourceManager { return b }

func (b *mockBackend) RemoveBuffer(h resource.RenderResource) { b.removed = append(b.removed, h) }

func (b *mockBackend) Name() string { return b.name }

func (b *mockBackend) Flush() error {
	b.flushes++
	return nil
}

func (b *mockBackend) Close() error {
	b.closed = true
	return nil
}

var _ Backend = (*mockBackend)(nil)

// resetRegistry clears all registered backends for test isolation and
// restores the previous registrations when the test ends.
func resetRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()

	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func TestRegisterAndNew(t *testing.T) {
	resetRegistry(t)

	Register("test", func() (Backend, error) {
		return newMockBackend("test"), nil
	})

	b, err := New("test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	mock, ok := b.(*mockBackend)
	if !ok {
		t.Fatal("backend is not a mockBackend")
	}
	if mock.Name() != "test" {
		t.Errorf("got name %q, want %q", mock.Name(), "test")
	}
}

func TestNewUnknown(t *testing.T) {
	resetRegistry(t)

	if _, err := New("unknown"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewFactoryError(t *testing.T) {
	resetRegistry(t)

	errNoDevice := errors.New("no device")
	Register("broken", func() (Backend, error) { return nil, errNoDevice })

	_, err := New("broken")
	if !errors.Is(err, errNoDevice) {
		t.Errorf("New() error = %v, want wrapping %v", err, errNoDevice)
	}
}

func TestRegisterNilFactory(t *testing.T) {
	resetRegistry(t)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil factory")
		}
	}()
	Register("nil", nil)
}

func TestRegisterDuplicate(t *testing.T) {
	resetRegistry(t)

	factory := func() (Backend, error) { return newMockBackend("dup"), nil }
	Register("dup", factory)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate registration")
		}
	}()
	Register("dup", factory)
}

func TestUnregister(t *testing.T) {
	resetRegistry(t)

	Register("gone", func() (Backend, error) { return newMockBackend("gone"), nil })
	if !IsRegistered("gone") {
		t.Fatal("backend should be registered")
	}
	Unregister("gone")
	if IsRegistered("gone") {
		t.Error("backend should be unregistered")
	}
	Unregister("never-registered")
}

func TestAvailableSorted(t *testing.T) {
	resetRegistry(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		name := name
		Register(name, func() (Backend, error) { return newMockBackend(name), nil })
	}

	got := Available()
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestDefaultPriority(t *testing.T) {
	resetRegistry(t)

	Register("aaa", func() (Backend, error) { return newMockBackend("aaa"), nil })
	Register(NameTrace, func() (Backend, error) { return newMockBackend(NameTrace), nil })
	Register(NameWGPU, func() (Backend, error) { return nil, errors.New("no adapter") })

	b, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if b.Name() != NameTrace {
		t.Errorf("Default() picked %q, want %q", b.Name(), NameTrace)
	}
}

func TestDefaultNoneAvailable(t *testing.T) {
	resetRegistry(t)

	if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Default() error = %v, want ErrBackendNotAvailable", err)
	}

	Register(NameWGPU, func() (Backend, error) { return nil, errors.New("no adapter") })
	if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Default() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestBackendAsRenderContext(t *testing.T) {
	resetRegistry(t)
	Register("test", func() (Backend, error) { return newMockBackend("test"), nil })

	b, err := New("test")
	if err != nil {
		t.Fatal(err)
	}

	q := rendercmd.NewQueue()
	q.CopyBufferToBuffer(resource.New(0, 1), 0, resource.New(1, 1), 0, 16)
	q.FreeBuffer(resource.New(0, 1))
	q.Execute(b)
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	mock := b.(*mockBackend)
	if mock.copies != 1 || len(mock.removed) != 1 || mock.flushes != 1 || !mock.closed {
		t.Errorf("unexpected backend state: %+v", mock)
	}
}
