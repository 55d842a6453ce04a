package vehicle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileWithBuses(t *testing.T) {
	p, err := ParseProfile(strings.NewReader(`
fingerprint: HYUNDAI SONATA 2020
mass_kg: 1640
buses: {mdps: 0, sas: 0, scc: 2}
tuning:
  speed_control: false
`))
	require.NoError(t, err)

	cp := p.CarParams()
	assert.Equal(t, Sonata, cp.Fingerprint)
	assert.Equal(t, 2, cp.SCCBus)
	assert.True(t, cp.LongitudinalControl)
	assert.Equal(t, DefaultSteerLimits(), cp.Steer)
	require.NotNil(t, p.Tuning.SpeedControl)
	assert.False(t, *p.Tuning.SpeedControl)
	assert.Nil(t, p.Tuning.FollowGapRatio)
}

func TestParseProfileDetectsBuses(t *testing.T) {
	p, err := ParseProfile(strings.NewReader(`
fingerprint: HYUNDAI GENESIS 2015-2016
bus_fingerprint:
  0: [1296]
  1: [593, 688, 1056]
spas: true
steer_limits: {max: 384, delta_up: 3, delta_down: 7, driver_allowance: 50, driver_multiplier: 2, driver_factor: 1}
`))
	require.NoError(t, err)

	cp := p.CarParams()
	assert.Equal(t, 1, cp.MDPSBus)
	assert.Equal(t, 1, cp.SASBus)
	assert.Equal(t, 1, cp.SCCBus)
	assert.True(t, cp.SPASEnabled)
	assert.Equal(t, 384.0, cp.Steer.Max)
}

func TestParseProfileRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":         "fingerprint: HYUNDAI SONATA 2020\nturbo: true\n",
		"unknown fingerprint": "fingerprint: TESLA\n",
		"both bus sources":    "fingerprint: HYUNDAI SONATA 2020\nbuses: {scc: 0}\nbus_fingerprint: {0: [1056]}\n",
		"bad scc bus":         "fingerprint: HYUNDAI SONATA 2020\nbuses: {scc: 3}\n",
		"bad steer limits":    "fingerprint: HYUNDAI SONATA 2020\nsteer_limits: {max: 0}\n",
		"bad gap ratio":       "fingerprint: HYUNDAI SONATA 2020\ntuning: {follow_gap_ratio: -1}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProfile(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadProfileFiles(t *testing.T) {
	for _, path := range []string{
		"../../config/vehicles/sonata_2020.yaml",
		"../../config/vehicles/genesis_2015.yaml",
	} {
		_, err := LoadProfile(path)
		assert.NoError(t, err, path)
	}
}

func TestFingerprintSets(t *testing.T) {
	assert.True(t, GenesisG90.GenesisFamily())
	assert.False(t, Sonata.GenesisFamily())
	assert.True(t, Palisade.SendsLFAMFA())
	assert.False(t, Elantra.SendsLFAMFA())
	assert.True(t, SonataHybrid.LaneModeUSM())
	assert.False(t, SantaFe.LaneModeUSM())
	assert.False(t, Fingerprint("HYUNDAI PONY 1975").Known())
}
