package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHKGMap(t *testing.T) {
	m := loadHKG(t)

	require.NoError(t, m.Require(
		"LKAS11", "CLU11", "MDPS12", "SCC11", "SCC12", "SCC13", "SCC14",
		"LFAHDA_MFC", "EMS11", "SPAS11", "SPAS12",
	))
	assert.ErrorContains(t, m.Require("CLU11", "FAKE"), "FAKE")

	fd, err := m.FrameByID(0x340)
	require.NoError(t, err)
	assert.Equal(t, "LKAS11", fd.Name)
	assert.Equal(t, 8, fd.DLC)
	for i := 1; i < len(fd.Signals); i++ {
		assert.Less(t, fd.Signals[i-1].StartBit, fd.Signals[i].StartBit)
	}
}

func TestParseCANMapRejects(t *testing.T) {
	header := strings.Join(requiredColumns, ",")
	cases := map[string]string{
		"missing column": "direction,frame_id,frame_name\ntx,0x1,A",
		"bad endianness": header + "\ntx,0x1,A,10,8,S,0,8,middle,0,1,0,0,255,0,,",
		"bits overflow":  header + "\ntx,0x1,A,10,8,S,60,8,little,0,1,0,0,255,0,,",
		"bad dlc":        header + "\ntx,0x1,A,10,9,S,0,8,little,0,1,0,0,255,0,,",
		"dlc mismatch": header +
			"\ntx,0x1,A,10,8,S,0,8,little,0,1,0,0,255,0,," +
			"\ntx,0x1,A,10,4,T,8,8,little,0,1,0,0,255,0,,",
		"duplicate name": header +
			"\ntx,0x1,A,10,8,S,0,8,little,0,1,0,0,255,0,," +
			"\ntx,0x2,A,10,8,T,8,8,little,0,1,0,0,255,0,,",
		"bad id":        header + "\ntx,0xZZ,A,10,8,S,0,8,little,0,1,0,0,255,0,,",
		"bad start bit": header + "\ntx,0x1,A,10,8,S,x,8,little,0,1,0,0,255,0,,",
		"bad signed":    header + "\ntx,0x1,A,10,8,S,0,8,little,maybe,1,0,0,255,0,,",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCANMap(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}
