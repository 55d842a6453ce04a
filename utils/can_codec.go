package utils

import (
	"fmt"
	"math"
	"sort"

	"go.einride.tech/can"
)

// Encode packs values into a frame of the named definition. Signals absent
// from values take their map default; values outside a signal's range are
// saturated rather than rejected.
func (m *CANMap) Encode(frameName string, values map[string]float64) (can.Frame, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return can.Frame{}, err
	}
	if fd.DLC <= 0 || fd.DLC > 8 {
		return can.Frame{}, fmt.Errorf("frame %s has invalid DLC %d", fd.Name, fd.DLC)
	}

	f := can.Frame{ID: fd.ID, Length: uint8(fd.DLC)}
	for _, s := range fd.Signals {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}
		putSignal(&f.Data, s, v)
	}
	if err := f.Validate(); err != nil {
		return can.Frame{}, fmt.Errorf("frame %s: %w", fd.Name, err)
	}
	return f, nil
}

// EncodeStrict is Encode but fails when values names a signal the frame does
// not define.
func (m *CANMap) EncodeStrict(frameName string, values map[string]float64) (can.Frame, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return can.Frame{}, err
	}
	var unknown []string
	for name := range values {
		if _, ok := fd.Signal(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return can.Frame{}, fmt.Errorf("frame %s has no signals %v", fd.Name, unknown)
	}
	return m.Encode(frameName, values)
}

// Decode unpacks a received frame into physical signal values.
func (m *CANMap) Decode(f can.Frame) (map[string]float64, error) {
	fd, err := m.FrameByID(f.ID)
	if err != nil {
		return nil, err
	}
	if int(f.Length) < fd.DLC {
		return nil, fmt.Errorf("frame 0x%X expects DLC %d, got %d", f.ID, fd.DLC, f.Length)
	}

	out := make(map[string]float64, len(fd.Signals))
	for _, s := range fd.Signals {
		out[s.Name] = getSignal(&f.Data, s)
	}
	return out, nil
}

func putSignal(d *can.Data, s SignalDef, v float64) {
	v = clamp(v, s.Min, s.Max)
	raw := clampRaw(int64(math.Round((v-s.Offset)/s.Factor)), s.BitLength, s.Signed)

	start, length := uint8(s.StartBit), uint8(s.BitLength)
	switch {
	case s.Endianness == "big" && s.Signed:
		d.SetSignedBitsBigEndian(start, length, raw)
	case s.Endianness == "big":
		d.SetUnsignedBitsBigEndian(start, length, uint64(raw))
	case s.Signed:
		d.SetSignedBitsLittleEndian(start, length, raw)
	default:
		d.SetUnsignedBitsLittleEndian(start, length, uint64(raw))
	}
}

func getSignal(d *can.Data, s SignalDef) float64 {
	start, length := uint8(s.StartBit), uint8(s.BitLength)
	var raw int64
	switch {
	case s.Endianness == "big" && s.Signed:
		raw = d.SignedBitsBigEndian(start, length)
	case s.Endianness == "big":
		raw = int64(d.UnsignedBitsBigEndian(start, length))
	case s.Signed:
		raw = d.SignedBitsLittleEndian(start, length)
	default:
		raw = int64(d.UnsignedBitsLittleEndian(start, length))
	}
	return float64(raw)*s.Factor + s.Offset
}
