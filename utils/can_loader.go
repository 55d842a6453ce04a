package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var requiredColumns = []string{
	"direction", "frame_id", "frame_name", "cycle_ms", "dlc",
	"signal_name", "start_bit", "bit_length", "endianness",
	"signed", "factor", "offset", "min", "max", "default", "unit", "comment",
}

func LoadCANMap(csvPath string) (*CANMap, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseCANMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", csvPath, err)
	}
	return m, nil
}

// mapRow is one CSV record addressed by column name.
type mapRow struct {
	rec  []string
	idx  map[string]int
	line int
	err  error
}

func (r *mapRow) str(col string) string {
	return strings.TrimSpace(r.rec[r.idx[col]])
}

// fail keeps the first parse error of the row.
func (r *mapRow) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("line %d column %s: %w", r.line, col, err)
	}
}

func (r *mapRow) intCol(col string) int {
	v, err := strconv.Atoi(r.str(col))
	if err != nil {
		r.fail(col, err)
	}
	return v
}

// floatCol treats an empty cell as 0.
func (r *mapRow) floatCol(col string) float64 {
	s := r.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *mapRow) boolCol(col string) bool {
	switch strings.ToLower(r.str(col)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no", "":
		return false
	}
	r.fail(col, fmt.Errorf("invalid bool %q", r.str(col)))
	return false
}

func (r *mapRow) idCol(col string) uint32 {
	s := r.str(col)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	u, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		r.fail(col, err)
	}
	return uint32(u)
}

func (r *mapRow) signal() SignalDef {
	sig := SignalDef{
		Name:       r.str("signal_name"),
		StartBit:   r.intCol("start_bit"),
		BitLength:  r.intCol("bit_length"),
		Endianness: r.str("endianness"),
		Signed:     r.boolCol("signed"),
		Factor:     r.floatCol("factor"),
		Offset:     r.floatCol("offset"),
		Min:        r.floatCol("min"),
		Max:        r.floatCol("max"),
		Default:    r.floatCol("default"),
		Unit:       r.str("unit"),
		Comment:    r.str("comment"),
	}
	if sig.Factor == 0 {
		sig.Factor = 1
	}
	if sig.Endianness == "" {
		sig.Endianness = "little"
	}
	return sig
}

func validateSignal(frame string, dlc int, sig SignalDef) error {
	switch {
	case sig.Endianness != "little" && sig.Endianness != "big":
		return fmt.Errorf("frame %s signal %s: unsupported endianness %q", frame, sig.Name, sig.Endianness)
	case sig.BitLength <= 0 || sig.BitLength > 64:
		return fmt.Errorf("frame %s signal %s: invalid bit_length %d", frame, sig.Name, sig.BitLength)
	case sig.StartBit < 0 || sig.StartBit > 63,
		sig.Endianness == "little" && sig.StartBit+sig.BitLength > 64:
		return fmt.Errorf("frame %s signal %s: bits %d..%d exceed payload",
			frame, sig.Name, sig.StartBit, sig.StartBit+sig.BitLength-1)
	case dlc <= 0 || dlc > 8:
		return fmt.Errorf("frame %s: invalid dlc %d", frame, dlc)
	}
	return nil
}

// ParseCANMap reads a CAN map in CSV form, one row per signal. Lines
// starting with '#' are comments.
func ParseCANMap(src io.Reader) (*CANMap, error) {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true
	r.Comment = '#'

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, k := range requiredColumns {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("can map missing required column: %q", k)
		}
	}

	m := &CANMap{
		ByID:   map[uint32]*FrameDef{},
		ByName: map[string]*FrameDef{},
	}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.FieldPos(0)
		row := &mapRow{rec: rec, idx: idx, line: line}

		frameID := row.idCol("frame_id")
		frameName := row.str("frame_name")
		dlc := row.intCol("dlc")
		cycleMS := row.intCol("cycle_ms")
		sig := row.signal()
		if row.err != nil {
			return nil, row.err
		}
		if err := validateSignal(frameName, dlc, sig); err != nil {
			return nil, err
		}
		if err := m.add(frameID, frameName, row.str("direction"), cycleMS, dlc, sig); err != nil {
			return nil, err
		}
	}

	for _, fd := range m.ByID {
		sort.Slice(fd.Signals, func(i, j int) bool { return fd.Signals[i].StartBit < fd.Signals[j].StartBit })
	}
	return m, nil
}

// add appends sig to its frame, creating the frame on first sight.
func (m *CANMap) add(id uint32, name, direction string, cycleMS, dlc int, sig SignalDef) error {
	fd, ok := m.ByID[id]
	if !ok {
		if other, dup := m.ByName[name]; dup {
			return fmt.Errorf("frame name %s used by 0x%X and 0x%X", name, other.ID, id)
		}
		fd = &FrameDef{
			ID:        id,
			Name:      name,
			DLC:       dlc,
			Direction: direction,
			CycleMS:   cycleMS,
		}
		m.ByID[id] = fd
		m.ByName[name] = fd
	}
	if fd.DLC != dlc {
		return fmt.Errorf("frame %s (0x%X) has inconsistent DLC (%d vs %d)", name, id, fd.DLC, dlc)
	}
	fd.Signals = append(fd.Signals, sig)
	return nil
}

func (m *CANMap) FrameByName(name string) (*FrameDef, error) {
	fd, ok := m.ByName[name]
	if !ok {
		return nil, fmt.Errorf("unknown frame %q (available: %v)", name, m.FrameNames())
	}
	return fd, nil
}

func (m *CANMap) FrameByID(id uint32) (*FrameDef, error) {
	fd, ok := m.ByID[id]
	if !ok {
		return nil, fmt.Errorf("unknown frame id 0x%X", id)
	}
	return fd, nil
}
