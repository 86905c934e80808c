// Package io provides the I/O port space of the 8085 emulator.
// It includes the port Bus, the Console devices on ports 0x00 and 0x01,
// and raw mode Terminal handling for interactive runs.
package io

import (
	"log"
)

const (
	PORT_FLOAT = uint8(0xFF) // Value read from an unmapped port.
)

// Device defines the interface for a device attached to a single port.
type Device interface {
	// In returns the next value from the device.
	In() uint8
	// Out sends a value to the device.
	Out(value uint8)
}

// Bus maps port numbers to devices.
// Unmapped ports read as PORT_FLOAT, and writes to them are dropped.
type Bus struct {
	Verbose bool // If set, enables verbose logging.

	devices map[uint8]Device
}

// Map attaches a device to a port, replacing any existing device.
// A nil device unmaps the port.
func (bus *Bus) Map(port uint8, dev Device) {
	if dev == nil {
		delete(bus.devices, port)
		return
	}

	if bus.devices == nil {
		bus.devices = make(map[uint8]Device)
	}
	bus.devices[port] = dev
}

// Device returns the device on a port.
func (bus *Bus) Device(port uint8) (dev Device, ok bool) {
	dev, ok = bus.devices[port]
	return
}

// In reads a port.
func (bus *Bus) In(port uint8) (value uint8) {
	value = PORT_FLOAT
	dev, ok := bus.devices[port]
	if ok {
		value = dev.In()
	}

	if bus.Verbose {
		log.Printf("io: in %02XH: %02XH", port, value)
	}

	return
}

// Out writes a port.
func (bus *Bus) Out(port uint8, value uint8) {
	if bus.Verbose {
		log.Printf("io: out %02XH: %02XH", port, value)
	}

	dev, ok := bus.devices[port]
	if ok {
		dev.Out(value)
	}
}
