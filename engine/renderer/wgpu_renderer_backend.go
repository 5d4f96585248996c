package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/instance"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	width         int
	height        int

	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color

	pipeline        *wgpu.RenderPipeline
	cameraLayout    *wgpu.BindGroupLayout
	cameraBuffer    *wgpu.Buffer
	cameraBindGroup *wgpu.BindGroup

	vertexBuffer   *wgpu.Buffer
	indexBuffer    *wgpu.Buffer
	indexCount     uint32
	instanceBuffer *wgpu.Buffer
}

type wgpuRendererBackend interface {
	// ConfigureSurface configures the surface for a new size and recreates the depth
	// (and MSAA) targets to match. It is required whenever the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if a render target could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the render pass clears to.
	//
	// Parameters:
	//   - rgba: red, green, blue and alpha in [0, 1]
	SetClearColor(rgba [4]float64)

	// InitPipeline creates the camera bind group and the voxel render pipeline from WGSL source.
	// The pipeline reads GPUVertex at buffer slot 0 and GPUInstance at slot 1.
	//
	// Parameters:
	//   - source: the complete WGSL module
	//
	// Returns:
	//   - error: an error if a shader module, layout, buffer or pipeline could not be created
	InitPipeline(source string) error

	// InitMeshBuffers creates and fills the vertex and index buffers for the shared mesh.
	//
	// Parameters:
	//   - vertexData: the marshalled GPUVertex data
	//   - indexData: the marshalled uint32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if the buffers could not be created or written
	InitMeshBuffers(vertexData, indexData []byte, indexCount int) error

	// InitInstanceBuffer creates and fills the per-instance vertex buffer, replacing any previous one.
	//
	// Parameters:
	//   - data: the marshalled GPUInstance data
	//
	// Returns:
	//   - error: an error if the buffer could not be created or written
	InitInstanceBuffer(data []byte) error

	// WriteCameraUniform uploads the marshalled GPUCameraUniform.
	//
	// Parameters:
	//   - data: the uniform bytes
	//
	// Returns:
	//   - error: an error if the write failed
	WriteCameraUniform(data []byte) error

	// DrawFrame acquires the next surface texture, draws instances [start, end) of the mesh,
	// submits and presents. An empty range still clears the frame.
	//
	// Parameters:
	//   - start: first instance index
	//   - end: one past the last instance index
	//
	// Returns:
	//   - error: ErrSurfaceAcquire (wrapped) if the surface texture was unavailable, or any other GPU error
	DrawFrame(start, end uint32) error

	// Release frees every GPU resource in reverse order of creation.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("nil surface descriptor")
	}

	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Voxel Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.configureSurface(width, height)
}

// configureSurface does the work of ConfigureSurface. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) configureSurface(width, height int) error {
	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface reports no supported formats")
	}
	if b.surfaceFormat == nil {
		b.surfaceFormat = &capabilities.Formats[0]
	}
	b.width, b.height = width, height

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseRenderTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		tex, err := b.createRenderTarget("MSAA Texture", width, height, count, *b.surfaceFormat)
		if err != nil {
			return err
		}
		b.msaaTexture = tex
		if b.msaaTextureView, err = tex.CreateView(nil); err != nil {
			return err
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.createRenderTarget("Depth Texture", width, height, count, wgpu.TextureFormatDepth24Plus)
	if err != nil {
		return err
	}
	b.depthTexture = depthTexture
	if b.depthTextureView, err = depthTexture.CreateView(nil); err != nil {
		return err
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView, // nil when MSAA is off; set per frame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) createRenderTarget(label string, width, height int, sampleCount uint32, format wgpu.TextureFormat) (*wgpu.Texture, error) {
	return b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
}

// releaseRenderTargets frees the size-dependent textures. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseRenderTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(rgba [4]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = wgpu.Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearColor
	}
}

func (b *wgpuRendererBackendImpl) InitPipeline(source string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return errors.New("surface must be configured before creating the pipeline")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Voxel Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	defer module.Release()

	var uniform camera.GPUCameraUniform
	cameraEntry := wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
	}
	cameraEntry.Buffer.Type = wgpu.BufferBindingTypeUniform
	cameraEntry.Buffer.MinBindingSize = uint64(uniform.Size())

	b.cameraLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{cameraEntry},
	})
	if err != nil {
		return fmt.Errorf("create camera bind group layout: %w", err)
	}

	b.cameraBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  uint64(uniform.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create camera buffer: %w", err)
	}

	b.cameraBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: b.cameraLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  b.cameraBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create camera bind group: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Voxel Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Voxel Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: VertexEntryPoint,
			Buffers: []wgpu.VertexBufferLayout{
				VertexBufferLayout(),
				instance.VertexBufferLayout(),
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.vertexBuffer, err = b.createFilledBuffer("Cube Vertex Buffer", vertexData, wgpu.BufferUsageVertex); err != nil {
		return err
	}
	if b.indexBuffer, err = b.createFilledBuffer("Cube Index Buffer", indexData, wgpu.BufferUsageIndex); err != nil {
		return err
	}
	b.indexCount = uint32(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitInstanceBuffer(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.createFilledBuffer("Instance Buffer", data, wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	if b.instanceBuffer != nil {
		b.instanceBuffer.Release()
	}
	b.instanceBuffer = buf
	return nil
}

// createFilledBuffer creates a CopyDst buffer of the given usage and writes data into it.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createFilledBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: no data", label)
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) WriteCameraUniform(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cameraBuffer == nil {
		return ErrNoPipeline
	}
	return b.queue.WriteBuffer(b.cameraBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) DrawFrame(start, end uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pipeline == nil || b.renderPassDescriptor == nil {
		return ErrNoPipeline
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// Lost or outdated: reconfigure at the last known size and skip this frame.
		common.Logger().Warn("surface texture unavailable, reconfiguring", "error", err, "width", b.width, "height", b.height)
		if cfgErr := b.configureSurface(b.width, b.height); cfgErr != nil {
			return fmt.Errorf("%w: %v (reconfigure: %v)", ErrSurfaceAcquire, err, cfgErr)
		}
		return fmt.Errorf("%w: %v", ErrSurfaceAcquire, err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	if end > start && b.instanceBuffer != nil {
		pass.SetPipeline(b.pipeline)
		pass.SetBindGroup(0, b.cameraBindGroup, nil)
		pass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, b.instanceBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(b.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(b.indexCount, end-start, 0, 0, start)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseRenderTargets()
	for _, buf := range []**wgpu.Buffer{&b.instanceBuffer, &b.indexBuffer, &b.vertexBuffer, &b.cameraBuffer} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if b.cameraBindGroup != nil {
		b.cameraBindGroup.Release()
		b.cameraBindGroup = nil
	}
	if b.cameraLayout != nil {
		b.cameraLayout.Release()
		b.cameraLayout = nil
	}
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
