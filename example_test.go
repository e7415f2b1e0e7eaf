package regionheap

import "fmt"

func Example() {
	region := make([]byte, 4096)
	h, _ := New(region, BestFit)

	b1 := h.Alloc(128)
	b2 := h.Alloc(512)

	fmt.Printf("b1: len=%d cap=%d\n", len(b1), cap(b1))
	fmt.Printf("b2: len=%d cap=%d\n", len(b2), cap(b2))
	fmt.Printf("blocks=%d\n", h.Blocks())

	h.Free(b2)
	h.Free(b1)
	fmt.Printf("blocks=%d free=%d\n", h.Blocks(), h.Available())

	// Output:
	// b1: len=128 cap=128
	// b2: len=512 cap=512
	// blocks=3
	// blocks=1 free=4064
}
