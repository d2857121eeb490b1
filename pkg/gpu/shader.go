package gpu

import _ "embed"

// PathTraceSource is the GLSL 4.30 compute shader. Its integrator, camera and
// RNG mirror pkg/integrator, pkg/geometry and pkg/core in float32.
//
//go:embed shaders/pathtrace.comp
var PathTraceSource string
