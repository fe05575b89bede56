package audiocapture

// Chunker slices a stream of mono samples into fixed-size chunks.
// It is not safe for concurrent use; the device callback owns it.
type Chunker struct {
	size int
	buf  []int16
	emit ChunkHandler
}

// NewChunker returns a Chunker that calls emit with every full chunk of size
// samples. A non-positive size means ChunkSize.
func NewChunker(size int, emit ChunkHandler) *Chunker {
	if size <= 0 {
		size = ChunkSize
	}
	return &Chunker{
		size: size,
		buf:  make([]int16, 0, size),
		emit: emit,
	}
}

// Write appends samples and emits every chunk that becomes full.
func (c *Chunker) Write(samples []int16) {
	for len(samples) > 0 {
		n := min(c.size-len(c.buf), len(samples))
		c.buf = append(c.buf, samples[:n]...)
		samples = samples[n:]

		if len(c.buf) == c.size {
			// The emitted chunk is handed off; start a fresh buffer.
			full := Chunk(c.buf)
			c.buf = make([]int16, 0, c.size)
			c.emit(full)
		}
	}
}

// Pending returns the number of buffered samples not yet emitted.
func (c *Chunker) Pending() int {
	return len(c.buf)
}

// Reset discards the partial chunk.
func (c *Chunker) Reset() {
	c.buf = c.buf[:0]
}
