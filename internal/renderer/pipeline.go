package renderer

import (
	"github.com/JoeGuida/renderer/internal/hal"
)

// ShaderLoader supplies compiled SPIR-V for a shader stage.
type ShaderLoader interface {
	Bytecode(stage hal.ShaderStage) ([]byte, error)
}

type Pipeline struct {
	Layout hal.PipelineLayout
	Handle hal.Pipeline
}

// CreateRenderPass builds the single clear-and-present render pass. The
// external dependency keeps the color attachment write from starting before the
// acquired image is available.
func CreateRenderPass(device hal.Device, format hal.Format) (hal.RenderPass, error) {
	renderPass, err := device.CreateRenderPass(hal.RenderPassInfo{
		Attachments: []hal.AttachmentDescription{
			{
				Format:        format,
				LoadOp:        hal.AttachmentLoadOpClear,
				StoreOp:       hal.AttachmentStoreOpStore,
				InitialLayout: hal.ImageLayoutUndefined,
				FinalLayout:   hal.ImageLayoutPresentSrc,
			},
		},
		ColorLayout: hal.ImageLayoutColorAttachmentOptimal,
		SubpassDependencies: []hal.SubpassDependency{
			{
				SrcSubpass: hal.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  hal.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  hal.PipelineStageColorAttachmentOutput,
				DstAccessMask: hal.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil || renderPass == nil {
		return nil, creationFailed(err, "create render pass for %s", format)
	}
	return renderPass, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

func createShaderModule(device hal.Device, shaders ShaderLoader, stage hal.ShaderStage) (hal.ShaderModule, error) {
	code, err := shaders.Bytecode(stage)
	if err != nil {
		return nil, creationFailed(err, "load %s shader", stage)
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, creationFailed(nil, "%s shader is %d bytes, not a whole number of SPIR-V words", stage, len(code))
	}

	module, err := device.CreateShaderModule(bytesToBytecode(code))
	if err != nil || module == nil {
		return nil, creationFailed(err, "create %s shader module", stage)
	}
	return module, nil
}

// CreateGraphicsPipeline builds the triangle pipeline against renderPass.
// Viewport and scissor are dynamic, so extent only seeds the baked state and a
// resize does not require a new pipeline. Shader modules are released before
// returning.
func CreateGraphicsPipeline(device hal.Device, shaders ShaderLoader, extent hal.Extent2D, renderPass hal.RenderPass) (*Pipeline, error) {
	vertShader, err := createShaderModule(device, shaders, hal.StageVertex)
	if err != nil {
		return nil, err
	}
	defer device.DestroyShaderModule(vertShader)

	fragShader, err := createShaderModule(device, shaders, hal.StageFragment)
	if err != nil {
		return nil, err
	}
	defer device.DestroyShaderModule(fragShader)

	layout, err := device.CreatePipelineLayout()
	if err != nil || layout == nil {
		return nil, creationFailed(err, "create pipeline layout")
	}

	handle, err := device.CreateGraphicsPipeline(hal.GraphicsPipelineInfo{
		Stages: []hal.ShaderStageInfo{
			{Stage: hal.StageVertex, Module: vertShader, EntryPoint: "main"},
			{Stage: hal.StageFragment, Module: fragShader, EntryPoint: "main"},
		},
		Topology: hal.PrimitiveTopologyTriangleList,

		PolygonMode: hal.PolygonModeFill,
		CullMode:    hal.CullModeBack,
		FrontFace:   hal.FrontFaceClockwise,
		LineWidth:   1.0,

		Samples:      1,
		BlendEnabled: false,
		WriteMask:    hal.ColorComponentAll,

		DynamicStates: []hal.DynamicState{hal.DynamicStateViewport, hal.DynamicStateScissor},
		Viewport:      fullViewport(extent),
		Scissor:       hal.Rect2D{Extent: extent},

		Layout:     layout,
		RenderPass: renderPass,
		Subpass:    0,
	})
	if err != nil || handle == nil {
		device.DestroyPipelineLayout(layout)
		return nil, creationFailed(err, "create graphics pipeline")
	}

	return &Pipeline{Layout: layout, Handle: handle}, nil
}

// Destroy releases the pipeline and then its layout.
func (p *Pipeline) Destroy(device hal.Device) {
	if p == nil {
		return
	}
	if p.Handle != nil {
		device.DestroyPipeline(p.Handle)
		p.Handle = nil
	}
	if p.Layout != nil {
		device.DestroyPipelineLayout(p.Layout)
		p.Layout = nil
	}
}

func fullViewport(extent hal.Extent2D) hal.Viewport {
	return hal.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}
