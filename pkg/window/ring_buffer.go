package window

// RingBuffer is a fixed-capacity circular buffer of values.
// Once full, each Push overwrites the oldest value, which is the
// slide-left step of an autoregressive lookback window.
type RingBuffer struct {
	data     []float64
	capacity int
	size     int
	head     int // points to the next write position
}

// NewRingBuffer creates a new ring buffer with the specified capacity
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// NewRingBufferFrom creates a full ring buffer holding values in order (oldest first)
func NewRingBufferFrom(values []float64) *RingBuffer {
	rb := NewRingBuffer(len(values))
	for _, v := range values {
		rb.Push(v)
	}
	return rb
}

// Push adds a value to the buffer
// If the buffer is full, the oldest value is overwritten
func (rb *RingBuffer) Push(v float64) {
	if rb.capacity == 0 {
		return
	}
	rb.data[rb.head] = v
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// Size returns the current number of elements in the buffer
func (rb *RingBuffer) Size() int {
	return rb.size
}

// IsFull returns true if the buffer is at capacity
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// Capacity returns the maximum capacity of the buffer
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// ToSlice returns all values in chronological order (oldest first)
func (rb *RingBuffer) ToSlice() []float64 {
	result := make([]float64, rb.size)
	if rb.size == 0 {
		return result
	}

	// Calculate the start position (oldest element)
	start := 0
	if rb.size == rb.capacity {
		start = rb.head
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(start+i)%rb.capacity]
	}

	return result
}

// Last returns the most recent value
func (rb *RingBuffer) Last() (float64, bool) {
	if rb.size == 0 {
		return 0, false
	}
	return rb.data[(rb.head-1+rb.capacity)%rb.capacity], true
}

// Clear empties the buffer
func (rb *RingBuffer) Clear() {
	rb.size = 0
	rb.head = 0
}
