package hub

// Descriptor is anything that resolves to an integer file
// descriptor. Registries are always keyed on the resolved integer,
// while pollers receive the original handle so they can compare
// handles by identity when they need to.
type Descriptor interface {
	Fileno() int
}

// FD is a raw integer file descriptor.
type FD int

// Fileno implements Descriptor.
func (fd FD) Fileno() int {
	return int(fd)
}

// Fder is implemented by *os.File and similar OS handles.
type Fder interface {
	Fd() uintptr
}

// FileHandle wraps an OS handle so it can be used as a Descriptor.
// Two FileHandles are equal when they wrap the same handle.
type FileHandle struct {
	h Fder
}

// File adapts h to a Descriptor.
func File(h Fder) FileHandle {
	return FileHandle{h: h}
}

// Fileno implements Descriptor.
func (f FileHandle) Fileno() int {
	return int(f.h.Fd())
}

// Handle returns the wrapped OS handle.
func (f FileHandle) Handle() Fder {
	return f.h
}
