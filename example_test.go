package hub_test

import (
	"fmt"

	"github.com/webriots/hub"
)

func ExampleLaxBoundedSemaphore() {
	sem := hub.NewLaxBoundedSemaphore(1)
	start := func(name string) func() {
		return func() { fmt.Println("start", name) }
	}

	fmt.Println(sem.Acquire(start("a")))
	fmt.Println(sem.Acquire(start("b")))
	sem.Release()
	fmt.Println(sem)
	// Output:
	// start a
	// true
	// false
	// start b
	// LaxBoundedSemaphore(1/1 waiting:0)
}

func ExampleReprFlag() {
	fmt.Println(hub.ReprFlag(hub.READ | hub.ERR))
	fmt.Println(hub.WRITE | hub.READ | hub.ERR)
	// Output:
	// R!
	// RW!
}
