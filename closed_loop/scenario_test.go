package main

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"scc-control-core/closed_loop/hud"
)

var _ = Describe("Scenario", func() {
	It("should load the bundled scenario", func() {
		scen, err := LoadScenario("../config/scenarios/lead_follow_highway.json")
		Expect(err).NotTo(HaveOccurred())
		Expect(scen.Ticks()).To(Equal(3000))
		Expect(scen.Segments).To(HaveLen(2))
	})

	It("should merge segment inputs over the defaults", func() {
		scen, err := ParseScenario([]byte(`{
			"timing": {"duration_s": 2},
			"defaults": {"enabled": true, "car_state": {"v_ego": 20, "clu11": {"CF_Clu_Vanz": 72}}},
			"segments": [
				{"t0": 0.5, "t1": 1, "inputs": {"visual_alert": 2, "car_state": {"left_blinker": true}}},
				{"t0": 1.5, "t1": -1, "inputs": {"enabled": false}}
			]
		}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(scen.Timing.DtS).To(Equal(0.01))

		in := scen.InputsAt(0.7)
		Expect(in.Enabled).To(BeTrue())
		Expect(in.CarState.VEgo).To(Equal(20.0))
		Expect(in.CarState.LeftBlinker).To(BeTrue())
		Expect(in.CarState.CLU11).To(HaveKeyWithValue("CF_Clu_Vanz", 72.0))

		cs := in.CarState
		ci := in.Controller(&cs)
		Expect(ci.VisualAlert).To(Equal(hud.AlertSteerRequired))

		Expect(scen.InputsAt(0.2).CarState.LeftBlinker).To(BeFalse())
		Expect(scen.InputsAt(1.99).Enabled).To(BeFalse())
	})

	It("should give each segment its own maps", func() {
		scen, err := ParseScenario([]byte(`{
			"timing": {"duration_s": 1},
			"defaults": {"car_state": {"lkas11": {"CF_Lkas_MsgCount": 1}}},
			"segments": [{"t0": 0.5, "t1": 1, "inputs": {"car_state": {"lkas11": {"CF_Lkas_MsgCount": 9}}}}]
		}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(scen.InputsAt(0.6).CarState.LKAS11["CF_Lkas_MsgCount"]).To(Equal(9.0))
		Expect(scen.InputsAt(0.1).CarState.LKAS11["CF_Lkas_MsgCount"]).To(Equal(1.0))
	})

	DescribeTable("should reject invalid scenarios",
		func(src string) {
			_, err := ParseScenario([]byte(src))
			Expect(err).To(HaveOccurred())
		},
		Entry("no duration", `{"timing": {}}`),
		Entry("dt longer than duration", `{"timing": {"dt_s": 2, "duration_s": 1}}`),
		Entry("reversed segment", `{"timing": {"duration_s": 1}, "segments": [{"t0": 0.5, "t1": 0.2}]}`),
		Entry("unknown key", `{"timing": {"duration_s": 1}, "defaults": {"brake_light": true}}`),
		Entry("unknown segment key", `{"timing": {"duration_s": 1}, "segments": [{"t0": 0, "t1": 1, "inputs": {"car_state": {"rpm": 2}}}]}`),
	)
})
