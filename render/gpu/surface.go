package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/globe/render"
	"github.com/gekko3d/globe/render/gpu/shaders"
	"github.com/gekko3d/globe/scene"
)

const backendName = "wgpu"

// DefaultPointScale converts a star's size to world units.
const DefaultPointScale = 2.0

type object struct {
	rank     int
	points   *render.PointCloud
	mesh     *render.Mesh
	pipeline *wgpu.RenderPipeline

	vertex  *wgpu.Buffer
	sizes   *wgpu.Buffer
	index   *wgpu.Buffer
	uniform *wgpu.Buffer
	texture *wgpu.Texture
	view    *wgpu.TextureView
	bind    *wgpu.BindGroup
	count   uint32
}

func (o *object) release() {
	if o.bind != nil {
		o.bind.Release()
	}
	if o.view != nil {
		o.view.Release()
	}
	if o.texture != nil {
		o.texture.Release()
	}
	for _, b := range []*wgpu.Buffer{o.vertex, o.sizes, o.index, o.uniform} {
		if b != nil {
			b.Release()
		}
	}
}

// Surface renders star layers and meshes with WebGPU into a GLFW window.
type Surface struct {
	PointScale float32

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface
	config   *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	cameraBuffer *wgpu.Buffer
	sampler      *wgpu.Sampler
	white        *wgpu.Texture

	pointPipeline *wgpu.RenderPipeline
	meshPipelines [3]*wgpu.RenderPipeline
	objects       map[render.Handle]*object
	order         []render.Handle
}

// NewSurface acquires an adapter and device for win. Any failure is reported
// as a *render.UnavailableError.
func NewSurface(win *Window) (*Surface, error) {
	s := &Surface{
		PointScale: DefaultPointScale,
		objects:    make(map[render.Handle]*object),
	}
	if err := s.init(win); err != nil {
		s.Close()
		var ue *render.UnavailableError
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, render.Unavailable(backendName, err)
	}
	return s, nil
}

func (s *Surface) init(win *Window) error {
	s.instance = wgpu.CreateInstance(nil)
	s.surface = s.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win.win))

	adapter, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: s.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	s.adapter = adapter

	s.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	s.queue = s.device.GetQueue()

	width, height := win.FramebufferSize()
	caps := s.surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return errors.New("surface reports no formats")
	}
	s.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	s.surface.Configure(adapter, s.device, s.config)

	if err := s.createDepth(); err != nil {
		return err
	}

	s.cameraBuffer, err = s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera",
		Size:  uint64(128),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	s.sampler, err = s.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	s.white, err = s.uploadTexture("White", 1, 1, 4, []byte{255, 255, 255, 255})
	if err != nil {
		return err
	}

	return s.createPipelines()
}

func (s *Surface) createDepth() error {
	if s.depthView != nil {
		s.depthView.Release()
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
	}
	var err error
	s.depthTexture, err = s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          wgpu.Extent3D{Width: s.config.Width, Height: s.config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	s.depthView, err = s.depthTexture.CreateView(nil)
	return err
}

func (s *Surface) createPipelines() error {
	pointsModule, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Points",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PointsWGSL},
	})
	if err != nil {
		return err
	}
	defer pointsModule.Release()

	meshModule, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Mesh",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.MeshWGSL},
	})
	if err != nil {
		return err
	}
	defer meshModule.Release()

	additive := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	}
	alpha := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
	}

	s.pointPipeline, err = s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Star Points",
		Vertex: wgpu.VertexState{
			Module:     pointsModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: pointStride * 4,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: 4,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32, Offset: 0, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     pointsModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    s.config.Format,
				Blend:     additive,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive:    wgpu.PrimitiveState{Topology: wgpu.PrimitiveTopologyTriangleList, CullMode: wgpu.CullModeNone},
		DepthStencil: depthState(false),
		Multisample:  wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("points pipeline: %w", err)
	}

	meshLayout := []wgpu.VertexBufferLayout{{
		ArrayStride: meshStride * 4,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}}

	variants := [3]struct {
		label string
		entry string
		blend *wgpu.BlendState
		cull  wgpu.CullMode
		write bool
	}{
		modeOpaque: {"Mesh Opaque", "fs_main", nil, wgpu.CullModeBack, true},
		modeBlend:  {"Mesh Blend", "fs_main", alpha, wgpu.CullModeBack, false},
		modeGlow:   {"Mesh Glow", "fs_glow", additive, wgpu.CullModeFront, false},
	}
	for mode, v := range variants {
		p, err := s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
			Label: v.label,
			Vertex: wgpu.VertexState{
				Module:     meshModule,
				EntryPoint: "vs_main",
				Buffers:    meshLayout,
			},
			Fragment: &wgpu.FragmentState{
				Module:     meshModule,
				EntryPoint: v.entry,
				Targets: []wgpu.ColorTargetState{{
					Format:    s.config.Format,
					Blend:     v.blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				}},
			},
			Primitive: wgpu.PrimitiveState{
				Topology:  wgpu.PrimitiveTopologyTriangleList,
				FrontFace: wgpu.FrontFaceCCW,
				CullMode:  v.cull,
			},
			DepthStencil: depthState(v.write),
			Multisample:  wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		})
		if err != nil {
			return fmt.Errorf("%s pipeline: %w", v.label, err)
		}
		s.meshPipelines[mode] = p
	}
	return nil
}

func depthState(write bool) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled: write,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}

func (s *Surface) uploadTexture(label string, width, height, stride int, pix []byte) (*wgpu.Texture, error) {
	extent := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	tex, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	err = s.queue.WriteTexture(tex.AsImageCopy(), pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(stride),
		RowsPerImage: uint32(height),
	}, &extent)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return tex, nil
}

func (s *Surface) Name() string { return backendName }

func (s *Surface) Submit(g render.Geometry) (render.Handle, error) {
	var (
		o   *object
		err error
	)
	switch g := g.(type) {
	case render.PointCloud:
		o, err = s.submitPoints(g)
	case render.Mesh:
		o, err = s.submitMesh(g)
	default:
		return "", fmt.Errorf("submit: unsupported geometry %T", g)
	}
	if err != nil {
		if o != nil {
			o.release()
		}
		return "", err
	}
	h := render.NewHandle()
	s.objects[h] = o
	s.order = append(s.order, h)
	return h, nil
}

func (s *Surface) submitPoints(pc render.PointCloud) (*object, error) {
	if pc.Layer == nil {
		return nil, errors.New("submit: point cloud without layer")
	}
	o := &object{rank: 1, points: &pc, pipeline: s.pointPipeline, count: uint32(pc.Layer.Len())}
	var err error
	o.uniform, err = s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    fmt.Sprintf("Layer %d Uniform", pc.Layer.ID),
		Contents: wgpu.ToBytes([]objectUniform{pointUniform(pc, s.PointScale)}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return o, err
	}
	o.bind, err = s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: s.pointPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: s.cameraBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: o.uniform, Size: wgpu.WholeSize},
		},
	})
	if err != nil || o.count == 0 {
		return o, err
	}

	o.vertex, err = s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    fmt.Sprintf("Layer %d Points", pc.Layer.ID),
		Contents: wgpu.ToBytes(packPoints(pc.Layer)),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return o, err
	}
	o.sizes, err = s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    fmt.Sprintf("Layer %d Sizes", pc.Layer.ID),
		Contents: wgpu.ToBytes(pc.Layer.Sizes),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	return o, err
}

func (s *Surface) submitMesh(m render.Mesh) (*object, error) {
	if m.Data == nil || len(m.Data.Indices) == 0 {
		return nil, fmt.Errorf("submit %q: empty mesh", m.Name)
	}
	mode := modeFor(m.Material)
	rank := 0
	if mode != modeOpaque {
		rank = 2 + int(mode) - int(modeBlend)
	}
	o := &object{rank: rank, mesh: &m, pipeline: s.meshPipelines[mode], count: uint32(len(m.Data.Indices))}

	var err error
	o.vertex, err = s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Name + " Vertices",
		Contents: wgpu.ToBytes(packMesh(m.Data)),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return o, err
	}
	o.index, err = s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Name + " Indices",
		Contents: wgpu.ToBytes(m.Data.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return o, err
	}
	o.uniform, err = s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.Name + " Uniform",
		Contents: wgpu.ToBytes([]objectUniform{meshUniform(m)}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return o, err
	}

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: s.cameraBuffer, Size: wgpu.WholeSize},
		{Binding: 1, Buffer: o.uniform, Size: wgpu.WholeSize},
	}
	if mode != modeGlow {
		tex := s.white
		if base := m.Material.Slot(scene.SlotBase); base != nil && base.Image != nil {
			w, h := base.Size()
			o.texture, err = s.uploadTexture(m.Name+" Base", w, h, base.Image.Stride, base.Image.Pix)
			if err != nil {
				return o, err
			}
			tex = o.texture
		}
		o.view, err = tex.CreateView(nil)
		if err != nil {
			return o, err
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: 2, TextureView: o.view},
			wgpu.BindGroupEntry{Binding: 3, Sampler: s.sampler},
		)
	}
	o.bind, err = s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  o.pipeline.GetBindGroupLayout(0),
		Entries: entries,
	})
	return o, err
}

func (s *Surface) Draw(handles []render.Handle, camera scene.CameraState) error {
	for _, h := range handles {
		if _, ok := s.objects[h]; !ok {
			return fmt.Errorf("draw %s: %w", h, render.ErrUnknownHandle)
		}
	}

	if err := s.queue.WriteBuffer(s.cameraBuffer, 0, wgpu.ToBytes([]cameraUniform{{View: camera.View, Projection: camera.Projection}})); err != nil {
		return err
	}
	for _, h := range handles {
		o := s.objects[h]
		var u objectUniform
		if o.points != nil {
			u = pointUniform(*o.points, s.PointScale)
			if o.sizes != nil {
				if err := s.queue.WriteBuffer(o.sizes, 0, wgpu.ToBytes(o.points.Layer.Sizes)); err != nil {
					return err
				}
			}
		} else {
			u = meshUniform(*o.mesh)
		}
		if err := s.queue.WriteBuffer(o.uniform, 0, wgpu.ToBytes([]objectUniform{u})); err != nil {
			return err
		}
	}

	next, err := s.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire frame: %w", err)
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            s.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})

	ordered := drawOrder(handles, func(h render.Handle) int { return s.objects[h].rank }, nil)
	for _, h := range ordered {
		o := s.objects[h]
		if o.count == 0 || o.vertex == nil {
			continue
		}
		pass.SetPipeline(o.pipeline)
		pass.SetBindGroup(0, o.bind, nil)
		pass.SetVertexBuffer(0, o.vertex, 0, wgpu.WholeSize)
		if o.points != nil {
			pass.SetVertexBuffer(1, o.sizes, 0, wgpu.WholeSize)
			pass.Draw(6, o.count, 0, 0)
			continue
		}
		pass.SetIndexBuffer(o.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(o.count, 1, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()
	s.queue.Submit(cmd)
	s.surface.Present()
	return nil
}

func (s *Surface) Dispose(h render.Handle) error {
	o, ok := s.objects[h]
	if !ok {
		return fmt.Errorf("dispose %s: %w", h, render.ErrUnknownHandle)
	}
	o.release()
	delete(s.objects, h)
	for i, x := range s.order {
		if x == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Resize reconfigures the swap chain and depth buffer. A zero size (a
// minimized window) is ignored.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s.config.Width = uint32(width)
	s.config.Height = uint32(height)
	s.surface.Configure(s.adapter, s.device, s.config)
	return s.createDepth()
}

// Close releases every GPU object, including geometry that was never disposed.
func (s *Surface) Close() error {
	for i := len(s.order) - 1; i >= 0; i-- {
		s.objects[s.order[i]].release()
	}
	s.order = nil
	s.objects = map[render.Handle]*object{}

	for _, p := range s.meshPipelines {
		if p != nil {
			p.Release()
		}
	}
	s.meshPipelines = [3]*wgpu.RenderPipeline{}
	if s.pointPipeline != nil {
		s.pointPipeline.Release()
		s.pointPipeline = nil
	}
	if s.white != nil {
		s.white.Release()
		s.white = nil
	}
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
	if s.cameraBuffer != nil {
		s.cameraBuffer.Release()
		s.cameraBuffer = nil
	}
	if s.depthView != nil {
		s.depthView.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
	return nil
}
