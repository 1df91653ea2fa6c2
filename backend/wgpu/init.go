package wgpu

import "github.com/gogpu/rendercmd/backend"

func init() {
	backend.Register(backend.NameWGPU, func() (backend.Backend, error) {
		return Open()
	})
}
