package instance

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrZeroWindowSize is returned when a cycler is asked to show zero instances per frame.
	ErrZeroWindowSize = errors.New("instance window size must be greater than zero")
	// ErrWindowExceedsPool is returned when the window is larger than the pool it slides over.
	ErrWindowExceedsPool = errors.New("instance window size exceeds pool size")
)

// InstanceWindowCycler slides a fixed-size half-open range [start, end) over a pool of
// instances, one window per Advance, wrapping back to the front once the next window
// would run past the pool. Tail instances that do not fill a whole window are never visited.
type InstanceWindowCycler interface {
	// Advance moves both bounds forward by one window, wrapping each independently.
	Advance()

	// Range returns the current window.
	//
	// Returns:
	//   - start: first visible instance index
	//   - end: one past the last visible instance index
	Range() (start, end uint32)

	// PoolSize returns the number of instances the window slides over.
	//
	// Returns:
	//   - uint32: the pool size
	PoolSize() uint32

	// WindowSize returns the number of instances visible per window.
	//
	// Returns:
	//   - uint32: the window size
	WindowSize() uint32

	// Reset moves the window back to [0, WindowSize()).
	Reset()
}

type instanceWindowCyclerImpl struct {
	mu *sync.Mutex

	poolSize   uint32
	windowSize uint32

	start uint32
	end   uint32
}

var _ InstanceWindowCycler = &instanceWindowCyclerImpl{}

// NewInstanceWindowCycler creates a cycler whose first window is [0, windowSize).
//
// Parameters:
//   - poolSize: total number of instances
//   - windowSize: number of instances visible at once
//
// Returns:
//   - InstanceWindowCycler: the cycler
//   - error: ErrZeroWindowSize or ErrWindowExceedsPool (wrapped) when the sizes are unusable
func NewInstanceWindowCycler(poolSize, windowSize uint32) (InstanceWindowCycler, error) {
	if windowSize == 0 {
		return nil, fmt.Errorf("new instance window cycler (pool %d): %w", poolSize, ErrZeroWindowSize)
	}
	if windowSize > poolSize {
		return nil, fmt.Errorf("new instance window cycler (window %d, pool %d): %w", windowSize, poolSize, ErrWindowExceedsPool)
	}
	return &instanceWindowCyclerImpl{
		mu:         &sync.Mutex{},
		poolSize:   poolSize,
		windowSize: windowSize,
		start:      0,
		end:        windowSize,
	}, nil
}

func (c *instanceWindowCyclerImpl) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Compare in uint64 so start+window cannot wrap around near MaxUint32.
	w := uint64(c.windowSize)
	if uint64(c.start)+w <= uint64(c.poolSize-c.windowSize) {
		c.start += c.windowSize
	} else {
		c.start = 0
	}
	if uint64(c.end)+w <= uint64(c.poolSize) {
		c.end += c.windowSize
	} else {
		c.end = c.windowSize
	}
}

func (c *instanceWindowCyclerImpl) Range() (start, end uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start, c.end
}

func (c *instanceWindowCyclerImpl) PoolSize() uint32 {
	return c.poolSize
}

func (c *instanceWindowCyclerImpl) WindowSize() uint32 {
	return c.windowSize
}

func (c *instanceWindowCyclerImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start, c.end = 0, c.windowSize
}
