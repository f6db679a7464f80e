package easystack

const (
	B  = 1
	KB = 1024 * B
)

// record
const (
	// 记录尾部的偏移量头: uint64 小端
	headerWidth = 8
)

// HeaderWidth returns the number of bytes each record spends on its offset header.
func HeaderWidth() int {
	return headerWidth
}
