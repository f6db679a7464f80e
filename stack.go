// 一个Stack由多个固定容量的chunk串联组成 -> 只有栈顶chunk可写 -> 每条记录尾部保存自身在chunk内的起始偏移，出栈时倒着找到记录边界

package easystack

import (
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

type stackState uint8

const (
	stateUninitialized stackState = iota
	stateReady
	// 最后一个chunk已经释放，下一次Push会重新分配
	stateDrained
)

// Stack is a LIFO container of variable-length byte records. It is not safe
// for concurrent use.
type Stack struct {
	option Options
	logger *zap.Logger
	node   *snowflake.Node
	// 栈顶chunk，通过previous持有整条链
	top   *chunk
	state stackState

	allocations uint64
	frees       uint64
	chunks      int
	records     int
}

// Stats is a snapshot of the stack's diagnostic counters.
type Stats struct {
	Allocations uint64
	Frees       uint64
	// 当前还存活的chunk数
	Chunks  int
	Records int
	// 存活chunk占用的总字节数
	ReservedBytes int
}

// New builds a Stack and allocates its first chunk.
func New(options Options) (*Stack, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("snowflake.NewNode(1) failed: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stack := &Stack{
		option: options,
		logger: logger,
		node:   node,
	}
	top, err := stack.allocate()
	if err != nil {
		return nil, err
	}
	stack.top = top
	stack.state = stateReady
	return stack, nil
}

func (s *Stack) allocate() (*chunk, error) {
	size := s.option.ChunkSize

	var (
		data   []byte
		err    error
		pooled bool
	)
	if s.option.Allocator != nil {
		data, err = s.option.Allocator(size)
	} else {
		data, err = defaultChunkPool.Get(size)
		pooled = true
	}
	if err != nil {
		s.logger.Warn("chunk allocation failed", zap.Int("capacity", size), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: allocator returned %d bytes, want %d", ErrAllocationFailed, len(data), size)
	}

	c := &chunk{
		id:     s.node.Generate(),
		data:   data,
		pooled: pooled,
	}
	s.allocations++
	s.chunks++
	s.logger.Debug("chunk allocated",
		zap.Int64("chunk", c.id.Int64()),
		zap.Int("capacity", size),
		zap.Uint64("allocations", s.allocations))
	return c, nil
}

func (s *Stack) free(c *chunk) {
	id, pooled := c.id, c.pooled
	data := c.release()
	if pooled {
		defaultChunkPool.Put(data)
	}
	s.frees++
	s.chunks--
	s.logger.Debug("chunk freed",
		zap.Int64("chunk", id.Int64()),
		zap.Uint64("frees", s.frees))
}

// Push appends payload as one record.
func (s *Stack) Push(payload []byte) error {
	return s.PushN(payload, len(payload))
}

// PushElement appends the first RecordSize bytes of payload.
func (s *Stack) PushElement(payload []byte) error {
	if s == nil {
		return ErrUninitialized
	}
	return s.PushN(payload, s.option.RecordSize)
}

// PushN appends the first length bytes of payload as one record. A new chunk
// is linked on top when the current one cannot hold the record; existing
// chunks are never moved.
func (s *Stack) PushN(payload []byte, length int) error {
	if s == nil || s.state == stateUninitialized {
		return ErrUninitialized
	}
	if length < 0 || length > len(payload) {
		return fmt.Errorf("%w: length %d, payload %d bytes", ErrInvalidLength, length, len(payload))
	}

	// 1.记录 + 头 比一个空chunk还大
	recordSize := length + headerWidth
	if recordSize > s.option.ChunkSize {
		return fmt.Errorf("%w: record %d bytes, chunk %d bytes", ErrRecordTooLarge, recordSize, s.option.ChunkSize)
	}

	// 2.已经排空，重新分配第一个chunk
	if s.state == stateDrained {
		top, err := s.allocate()
		if err != nil {
			return err
		}
		s.top = top
		s.state = stateReady
	} else if !s.top.fits(recordSize) { // 3.当前chunk放不下，压一个新chunk
		top, err := s.allocate()
		if err != nil {
			return err
		}
		top.previous = s.top
		s.top = top
	}

	s.top.write(payload[:length])
	s.records++
	return nil
}

// settle frees exhausted chunks above the bottom one. When the bottom chunk is
// exhausted it is freed too and the stack becomes drained.
func (s *Stack) settle() error {
	if s == nil || s.state == stateUninitialized {
		return ErrUninitialized
	}
	if s.state == stateDrained {
		return ErrEmpty
	}

	for s.top.empty() && s.top.previous != nil {
		exhausted := s.top
		s.top = exhausted.previous
		s.free(exhausted)
	}
	if s.top.empty() {
		s.free(s.top)
		s.top = nil
		s.state = stateDrained
		return ErrEmpty
	}
	return nil
}

// Pop removes the most recent record and copies it into dst, returning the
// payload length. A nil dst discards the record. When dst is too short the
// record stays on the stack and io.ErrShortBuffer is returned.
//
// ErrEmpty is returned once every record has been popped; at that point all
// chunks have been released.
func (s *Stack) Pop(dst []byte) (int, error) {
	if err := s.settle(); err != nil {
		return 0, err
	}

	start, end := s.top.last()
	n := end - start
	if dst != nil {
		if len(dst) < n {
			return 0, fmt.Errorf("%w: record %d bytes, buffer %d bytes", io.ErrShortBuffer, n, len(dst))
		}
		copy(dst, s.top.data[start:end])
	}

	s.top.cursor = start
	s.records--
	return n, nil
}

// PopElement pops a record into dst, which must hold at least RecordSize bytes.
func (s *Stack) PopElement(dst []byte) (int, error) {
	if s == nil {
		return 0, ErrUninitialized
	}
	if len(dst) < s.option.RecordSize {
		return 0, fmt.Errorf("%w: buffer %d bytes, record size %d", io.ErrShortBuffer, len(dst), s.option.RecordSize)
	}
	return s.Pop(dst)
}

// PopBytes pops the most recent record into a newly allocated slice.
func (s *Stack) PopBytes() ([]byte, error) {
	if err := s.settle(); err != nil {
		return nil, err
	}

	start, end := s.top.last()
	result := make([]byte, end-start)
	copy(result, s.top.data[start:end])

	s.top.cursor = start
	s.records--
	return result, nil
}

// Drain pops and discards every remaining record, releasing all chunks.
func (s *Stack) Drain() {
	for {
		if _, err := s.Pop(nil); err != nil {
			return
		}
	}
}

// Len returns the number of records on the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return s.records
}

// Drained reports whether the last chunk has been released.
func (s *Stack) Drained() bool {
	return s != nil && s.state == stateDrained
}

// Options returns the options the stack was built with.
func (s *Stack) Options() Options {
	if s == nil {
		return Options{}
	}
	return s.option
}

func (s *Stack) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		Allocations:   s.allocations,
		Frees:         s.frees,
		Chunks:        s.chunks,
		Records:       s.records,
		ReservedBytes: s.chunks * s.option.ChunkSize,
	}
}
