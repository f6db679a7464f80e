package listdir

import "encoding/binary"

// cursor is the resume point of one directory: the entry to visit next.
type cursor struct {
	dir  string
	next int
}

/*
序列化
next          +     dir
varint(max 10)
*/

func (c *cursor) encode() []byte {
	header := make([]byte, binary.MaxVarintLen64)
	index := binary.PutUvarint(header, uint64(c.next))

	result := make([]byte, index+len(c.dir))
	copy(result, header[:index])
	copy(result[index:], c.dir)
	return result
}

func (c *cursor) decode(data []byte) {
	next, n := binary.Uvarint(data)
	c.next = int(next)
	c.dir = string(data[n:])
}
