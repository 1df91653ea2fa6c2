package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// backendPreference is the order in which Open tries registered HAL
// backends.
var backendPreference = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
	gputypes.BackendEmpty,
}

// lookupBackend finds a registered HAL backend.
var lookupBackend = hal.GetBackend

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend gputypes.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

func gpuInfo(info gputypes.AdapterInfo) GPUInfo {
	return GPUInfo{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}
}

// Open creates a Context on a device it opens itself.
//
// Registered HAL backends are tried in the order Vulkan, Metal, DX12, GL,
// then the empty backend. A HAL backend is registered by importing its
// package, for example github.com/gogpu/wgpu/hal/allbackends. Discrete and
// integrated GPUs are preferred over other adapters. A driver that panics
// while opening is reported as ErrDriverPanic and the next backend is tried.
//
// The returned Context owns the device and destroys it on Close.
func Open(opts ...Option) (*Context, error) {
	o := newOptions(opts)

	var errs []error
	for _, variant := range backendPreference {
		if variant != gputypes.BackendEmpty && !o.backends.Contains(variant) {
			continue
		}
		b, ok := lookupBackend(variant)
		if !ok {
			continue
		}
		c, err := openBackend(b, o)
		if err != nil {
			o.log().Debug("wgpu: backend unavailable", "backend", variant.String(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", variant, err))
			continue
		}
		return c, nil
	}
	return nil, errors.Join(ErrNoAdapter, errors.Join(errs...))
}

func openBackend(b hal.Backend, o options) (c *Context, err error) {
	defer func() {
		// The instance is not destroyed after a driver panic.
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("%w: %v", ErrDriverPanic, r)
		}
	}()

	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Backends: o.backends})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	selected := selectAdapter(adapters)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	c = newContext(openDev.Device, openDev.Queue, o)
	c.instance = instance
	c.owned = true
	c.info = gpuInfo(selected.Info)

	o.log().Info("wgpu: device opened", "gpu", c.info.String(), "driver", c.info.Driver)
	return c, nil
}

// selectAdapter prefers a discrete or integrated GPU and otherwise returns
// the first adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}
