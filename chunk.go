package easystack

import (
	"encoding/binary"

	"github.com/bwmarrin/snowflake"
)

// chunk is one fixed-capacity block in the chain. Records are laid out as
// [payload][start offset] so the last record can be found from cursor alone.
type chunk struct {
	// 诊断用的chunk id
	id snowflake.ID
	// 固定容量的缓冲区
	data []byte
	// 第一个空闲字节的位置
	cursor int
	// 被压在下面的chunk
	previous *chunk
	// data 是否来自内置的缓冲池
	pooled bool
}

func (c *chunk) fits(recordSize int) bool {
	return c.cursor+recordSize <= len(c.data)
}

// write appends payload and its header, returning the record start offset.
func (c *chunk) write(payload []byte) int {
	start := c.cursor
	n := copy(c.data[start:], payload)
	binary.LittleEndian.PutUint64(c.data[start+n:start+n+headerWidth], uint64(start))
	c.cursor = start + n + headerWidth
	return start
}

// last returns the bounds of the most recent record's payload.
func (c *chunk) last() (start, end int) {
	end = c.cursor - headerWidth
	start = int(binary.LittleEndian.Uint64(c.data[end:c.cursor]))
	return start, end
}

func (c *chunk) empty() bool {
	return c.cursor == 0
}

// release drops the buffer and the link. It does not touch previous chunks.
func (c *chunk) release() []byte {
	data := c.data
	c.data = nil
	c.previous = nil
	c.cursor = 0
	return data
}
