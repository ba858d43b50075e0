package hub

// noCopy is a type that prevents copying of values that embed it. It
// implements sync.Locker to provide a standard way to detect improper
// copying. This is similar to sync.Mutex's embedded noCopy field.
type noCopy struct{}

// Lock is a no-op implementation of sync.Locker.Lock.
func (*noCopy) Lock() {}

// Unlock is a no-op implementation of sync.Locker.Unlock.
func (*noCopy) Unlock() {}

// DummyLock is a sync.Locker that does nothing. Code shared between
// the single-threaded hub and locked, multi-threaded callers can take
// a sync.Locker and be handed a DummyLock on the hub side.
type DummyLock struct{}

// Lock does nothing.
func (DummyLock) Lock() {}

// Unlock does nothing.
func (DummyLock) Unlock() {}
