package glcompute

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/gpu"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// glContext holds the hidden window and every GL object the backend uses.
// Its methods must only be called from the locked GL goroutine.
type glContext struct {
	logger *zap.Logger
	window *glfw.Window

	program      uint32
	texture      uint32
	pbo          uint32
	sphereSSBO   uint32
	triangleSSBO uint32
	paramsUBO    uint32

	width  int
	height int
}

func newGLContext(logger *zap.Logger) (*glContext, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(1, 1, "pathtracer-compute", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window: %w", err)
	}
	window.MakeContextCurrent()

	c := &glContext{logger: logger, window: window}
	if err := gl.Init(); err != nil {
		c.destroy()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	logger.Info("OpenGL context created",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	program, err := buildProgram(gpu.PathTraceSource)
	if err != nil {
		c.destroy()
		return nil, err
	}
	c.program = program

	gl.GenTextures(1, &c.texture)
	gl.BindTexture(gl.TEXTURE_2D, c.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenBuffers(1, &c.pbo)
	gl.GenBuffers(1, &c.sphereSSBO)
	gl.GenBuffers(1, &c.triangleSSBO)
	gl.GenBuffers(1, &c.paramsUBO)

	return c, nil
}

// buildProgram compiles and links the compute stage
func buildProgram(source string) (uint32, error) {
	shader, err := compileShader(source, gl.COMPUTE_SHADER)
	if err != nil {
		return 0, fmt.Errorf("compile compute shader: %w", err)
	}
	defer gl.DeleteShader(shader)

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link compute program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compile: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// resize reallocates the image and readback buffer, leaving the image cleared
func (c *glContext) resize(width, height int) {
	c.width, c.height = width, height

	zeros := make([]float32, width*height*4)
	gl.BindTexture(gl.TEXTURE_2D, c.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(zeros))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, c.pbo)
	gl.BufferData(gl.PIXEL_PACK_BUFFER, width*height*4*4, nil, gl.STREAM_READ)
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

	c.logger.Debug("GPU image resized", zap.Int("width", width), zap.Int("height", height))
}

// clear zeroes the image without reallocating it
func (c *glContext) clear() {
	zeros := make([]float32, c.width*c.height*4)
	gl.BindTexture(gl.TEXTURE_2D, c.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(c.width), int32(c.height), gl.RGBA, gl.FLOAT, gl.Ptr(zeros))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// upload replaces the contents of a storage or uniform buffer. Empty data is
// replaced by one zeroed record so the binding always has backing storage.
func upload(target, buffer, binding uint32, data []byte, minSize int) {
	if len(data) == 0 {
		data = make([]byte, minSize)
	}
	gl.BindBuffer(target, buffer)
	gl.BufferData(target, len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
	gl.BindBufferBase(target, binding, buffer)
	gl.BindBuffer(target, 0)
}

func (c *glContext) render(job *renderer.FrameJob, readback bool) (renderer.RenderStats, error) {
	if job.Width != c.width || job.Height != c.height {
		c.resize(job.Width, job.Height)
	} else if job.Params.Accumulate && job.Params.FrameIndex <= 1 {
		c.clear()
	}

	spheres, triangles := gpu.PackScene(job.Scene)
	params := gpu.NewParamsBlock(job.Params, job.Camera)
	params.SphereCount = uint32(len(spheres))
	params.TriangleCount = uint32(len(triangles))

	upload(gl.SHADER_STORAGE_BUFFER, c.sphereSSBO, gpu.SphereBinding, gpu.EncodeSpheres(spheres), gpu.SphereRecordSize)
	upload(gl.SHADER_STORAGE_BUFFER, c.triangleSSBO, gpu.TriangleBinding, gpu.EncodeTriangles(triangles), gpu.TriangleRecordSize)
	upload(gl.UNIFORM_BUFFER, c.paramsUBO, gpu.ParamsBinding, params.Marshal(), gpu.ParamsBlockSize)

	gl.UseProgram(c.program)
	gl.BindImageTexture(gpu.ImageUnit, c.texture, 0, false, 0, gl.READ_WRITE, gl.RGBA32F)

	groupsX, groupsY := gpu.WorkgroupCounts(job.Width, job.Height)
	gl.DispatchCompute(groupsX, groupsY, 1)

	// Image writes must be visible before the texture is sampled or read back
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT | gl.TEXTURE_UPDATE_BARRIER_BIT)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return renderer.RenderStats{}, fmt.Errorf("dispatch: GL error 0x%x", errCode)
	}

	if !readback || job.Out == nil {
		gl.Finish()
		return renderer.RenderStats{
			TotalPixels:     job.Width * job.Height,
			Workers:         1,
			SamplesPerPixel: int(job.Params.FrameIndex),
		}, nil
	}

	if err := c.readPixels(job.Out); err != nil {
		return renderer.RenderStats{}, err
	}
	return renderer.StatsFromFrame(job.Out, job.Params, 1), nil
}

// readPixels copies the image into out through the pixel pack buffer
func (c *glContext) readPixels(out *renderer.FrameBuffer) error {
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, c.pbo)
	defer gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

	gl.BindTexture(gl.TEXTURE_2D, c.texture)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	ptr := gl.MapBuffer(gl.PIXEL_PACK_BUFFER, gl.READ_ONLY)
	if ptr == nil {
		return fmt.Errorf("map pixel buffer: GL error 0x%x", gl.GetError())
	}
	texels := unsafe.Slice((*float32)(ptr), c.width*c.height*4)
	for i := range out.Pixels {
		off := i * 4
		out.Pixels[i] = core.NewVec3(float64(texels[off]), float64(texels[off+1]), float64(texels[off+2]))
	}
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	return nil
}

func (c *glContext) destroy() {
	if c.program != 0 {
		gl.DeleteProgram(c.program)
	}
	if c.texture != 0 {
		gl.DeleteTextures(1, &c.texture)
	}
	buffers := []uint32{c.pbo, c.sphereSSBO, c.triangleSSBO, c.paramsUBO}
	for i := range buffers {
		if buffers[i] != 0 {
			gl.DeleteBuffers(1, &buffers[i])
		}
	}
	if c.window != nil {
		c.window.Destroy()
	}
	glfw.Terminate()
}
