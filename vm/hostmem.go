package vm

// HostMemory abstracts the CMEM_READ/CMEM_WRITE instructions' target: a
// 16-bit addressable window into "computer memory". On the original cc65
// target this was the 6502's own address space; here it is a capability,
// so a non-native host can back it with whatever makes sense (a flat
// array for simulation, a memory-mapped device for something real).
type HostMemory interface {
	Read(addr uint16) byte
	Write(addr uint16, data byte)
}

// FlatHostMemory is a 64KiB flat byte array used as the default
// HostMemory implementation. It is adapted from hejops-gone's mem.Bus,
// which backs the 6502 CPU's own address space the same way; here it
// stands in for "the rest of the simulated machine" that BASICfuck's
// EXECUTE and CMEM_* instructions reach into.
type FlatHostMemory struct {
	ram [65536]byte
}

// NewFlatHostMemory returns a zeroed 64KiB HostMemory.
func NewFlatHostMemory() *FlatHostMemory {
	return &FlatHostMemory{}
}

func (m *FlatHostMemory) Read(addr uint16) byte {
	return m.ram[addr]
}

func (m *FlatHostMemory) Write(addr uint16, data byte) {
	m.ram[addr] = data
}

// HostCall abstracts the EXECUTE instruction: invoking a host subroutine
// at the current host memory pointer, passing the current and next two
// cells as register-like inputs a, x, y and receiving back their updated
// values. On the cc65 target this was a real 6502 JSR; here it's a
// capability so embedders can wire in whatever "calling out of the
// sandbox" means for their host, or refuse it outright.
type HostCall interface {
	Call(a, x, y byte, addr uint16) (ra, rx, ry byte, err error)
}

// IdentityHostCall is a HostCall that returns its inputs unchanged,
// useful for testing and for hosts with nothing to call out to.
type IdentityHostCall struct{}

func (IdentityHostCall) Call(a, x, y byte, addr uint16) (byte, byte, byte, error) {
	return a, x, y, nil
}

// UnavailableHostCall is a HostCall that always fails with
// ErrHostUnavailable, for hosts that want EXECUTE to be a hard error
// rather than a silent no-op.
type UnavailableHostCall struct{}

func (UnavailableHostCall) Call(a, x, y byte, addr uint16) (byte, byte, byte, error) {
	return 0, 0, 0, ErrHostUnavailable
}
