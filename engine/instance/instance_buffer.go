package instance

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-voxel/common"
)

// InstanceBuffer holds a grid of instances together with their marshalled GPU bytes.
// The bytes are laid out in grid order, so a window [start, end) of instances maps to
// bytes [start*64, end*64).
type InstanceBuffer interface {
	// Grid returns the grid the buffer was built from.
	//
	// Returns:
	//   - GridConfig: the grid dimensions
	Grid() GridConfig

	// Count returns the number of instances in the buffer.
	//
	// Returns:
	//   - uint32: the instance count (GridConfig.PoolSize)
	Count() uint32

	// LayerSize returns the number of instances in one plane.
	//
	// Returns:
	//   - uint32: GridConfig.LayerSize
	LayerSize() uint32

	// Instances returns a copy of the CPU-side instances.
	//
	// Returns:
	//   - []Instance: the instances in grid order
	Instances() []Instance

	// Bytes returns the marshalled GPUInstance data, ready for a vertex buffer upload.
	// The slice must not be modified.
	//
	// Returns:
	//   - []byte: Count()*64 bytes
	Bytes() []byte
}

type instanceBufferImpl struct {
	mu *sync.Mutex

	grid      GridConfig
	instances []Instance
	data      []byte

	workers int
	pool    worker.DynamicWorkerPool
}

var _ InstanceBuffer = &instanceBufferImpl{}

// InstanceBufferOption is a functional option for configuring an InstanceBuffer.
type InstanceBufferOption func(*instanceBufferImpl)

// WithWorkers sets how many workers marshal planes in parallel when the buffer owns its pool.
// Defaults to NumCPU-1 (at least 1).
//
// Parameters:
//   - n: number of workers
//
// Returns:
//   - InstanceBufferOption: functional option to set the worker count
func WithWorkers(n int) InstanceBufferOption {
	return func(b *instanceBufferImpl) {
		b.workers = n
	}
}

// WithWorkerPool marshals on an existing pool instead of a private one.
// The caller keeps ownership of the pool and must stop it.
//
// Parameters:
//   - pool: the shared worker pool
//
// Returns:
//   - InstanceBufferOption: functional option to share a worker pool
func WithWorkerPool(pool worker.DynamicWorkerPool) InstanceBufferOption {
	return func(b *instanceBufferImpl) {
		b.pool = pool
	}
}

// NewInstanceBuffer lays out the grid and marshals every instance, one plane per worker task.
//
// Parameters:
//   - grid: the grid dimensions
//   - options: functional options to configure the buffer
//
// Returns:
//   - InstanceBuffer: the populated buffer
//   - error: the grid's Validate error
func NewInstanceBuffer(grid GridConfig, options ...InstanceBufferOption) (InstanceBuffer, error) {
	instances, err := NewGrid(grid)
	if err != nil {
		return nil, err
	}

	b := &instanceBufferImpl{
		mu:        &sync.Mutex{},
		grid:      grid,
		instances: instances,
		workers:   max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(b)
	}

	pool := b.pool
	if pool == nil {
		pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
		defer pool.Stop()
	}
	b.data = marshalPlanes(pool, instances, int(grid.LayerSize()))

	common.Logger().Debug("instance buffer built",
		"rows", grid.Rows, "cols", grid.Cols, "planes", grid.Planes,
		"instances", len(instances), "bytes", len(b.data))
	return b, nil
}

// marshalPlanes writes each layer-sized chunk of instances into its own slice of one
// shared buffer. Chunks never overlap, so tasks need no locking; the WaitGroup is the
// only barrier.
func marshalPlanes(pool worker.DynamicWorkerPool, instances []Instance, layerSize int) []byte {
	const stride = 64
	data := make([]byte, len(instances)*stride)
	if layerSize <= 0 {
		layerSize = len(instances)
	}

	var wg sync.WaitGroup
	taskID := 0
	for first := 0; first < len(instances); first += layerSize {
		last := min(first+layerSize, len(instances))
		chunk := instances[first:last]
		out := data[first*stride : last*stride]

		wg.Add(1)
		id := taskID
		taskID++
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i, inst := range chunk {
					g := NewGPUInstance(inst)
					g.marshalInto(out[i*stride : (i+1)*stride])
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return data
}

func (b *instanceBufferImpl) Grid() GridConfig {
	return b.grid
}

func (b *instanceBufferImpl) Count() uint32 {
	return uint32(len(b.instances))
}

func (b *instanceBufferImpl) LayerSize() uint32 {
	return b.grid.LayerSize()
}

func (b *instanceBufferImpl) Instances() []Instance {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Instance, len(b.instances))
	copy(out, b.instances)
	return out
}

func (b *instanceBufferImpl) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}
