package bitarray_test

import (
	"fmt"

	"github.com/xupit3r/bitgrid/internal/bitarray"
	"github.com/xupit3r/bitgrid/internal/gpu"
)

func Example() {
	owner, err := bitarray.New(gpu.NewCPUDevice(), 2, 5)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer owner.Free()

	view := owner.View()
	view.SetBit(0, 0)
	view.SetBit(7, 1)

	fmt.Println(owner.BitsPerElement(), owner.SizeBytes())
	fmt.Println(view.ToInteger(0), view.ToInteger(1))
	// Output:
	// 8 2
	// 1 128
}
