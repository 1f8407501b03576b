package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"NoteBoard/internal/state"
)

// fakeStore records calls; when gate is set, Create, Update and Fetch
// announce themselves on entered and wait for gate to close.
type fakeStore struct {
	mu      sync.Mutex
	images  []state.ImageRef
	files   map[string][]byte
	calls   map[string]int
	updated []string
	fail    map[string]error
	// anonymous makes Create answer without naming the new drawing.
	anonymous bool

	gate    chan struct{}
	entered chan string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files: make(map[string][]byte),
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (f *fakeStore) seed(name string, png []byte) state.ImageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := state.NewImageRef("/uploads/" + name)
	f.images = append(f.images, ref)
	f.files[name] = png
	return ref
}

func (f *fakeStore) block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan string, 8)
}

func (f *fakeStore) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.gate)
	f.gate = nil
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate, entered := f.gate, f.entered
	err := f.fail[op]
	f.mu.Unlock()

	if gate != nil {
		entered <- op
		<-gate
	}
	return err
}

func (f *fakeStore) List(_ context.Context) ([]state.ImageRef, error) {
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]state.ImageRef(nil), f.images...), nil
}

func (f *fakeStore) Create(_ context.Context, png []byte) (state.ImageRef, error) {
	if err := f.enter("create"); err != nil {
		return state.ImageRef{}, err
	}
	f.mu.Lock()
	name := fmt.Sprintf("drawing-%d.png", len(f.files)+1)
	anonymous := f.anonymous
	f.mu.Unlock()
	ref := f.seed(name, png)
	if anonymous {
		return state.ImageRef{}, nil
	}
	return ref, nil
}

func (f *fakeStore) Update(_ context.Context, filename string, png []byte) (state.ImageRef, error) {
	if err := f.enter("update"); err != nil {
		return state.ImageRef{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, filename)
	f.files[filename] = png
	return state.NewImageRef("/uploads/" + filename), nil
}

func (f *fakeStore) Delete(_ context.Context, filename string) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[filename]; !ok {
		return &state.NetworkError{Op: "delete drawing", Status: 404, Err: errors.New("not found")}
	}
	delete(f.files, filename)
	kept := f.images[:0]
	for _, img := range f.images {
		if img.Filename != filename {
			kept = append(kept, img)
		}
	}
	f.images = kept
	return nil
}

func (f *fakeStore) Fetch(_ context.Context, ref state.ImageRef) ([]byte, error) {
	if err := f.enter("fetch"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	png, ok := f.files[ref.Filename]
	if !ok {
		return nil, &state.NetworkError{Op: "fetch drawing", Status: 404, Err: errors.New("not found")}
	}
	return png, nil
}
