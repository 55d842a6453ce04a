package main

import (
	"context"
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.einride.tech/can"
	"go.uber.org/mock/gomock"

	"scc-control-core/closed_loop/canmsg"
	"scc-control-core/closed_loop/recorder"
	"scc-control-core/utils"
)

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{
		MapPath:      "../config/can/hkg_can_map.csv",
		ProfilePath:  "../config/vehicles/sonata_2020.yaml",
		ScenarioPath: "../config/scenarios/lead_follow_highway.json",
	}
}

const shortScenario = `{
  "meta": {"name": "short"},
  "timing": {"dt_s": 0.01, "duration_s": 0.05},
  "defaults": {"enabled": true, "car_state": {"v_ego": 10, "clu_vanz": 36}}
}`

var _ = Describe("Runner", func() {
	var (
		mockCtrl *gomock.Controller
		bus0     *MockCANWriter
		bus2     *MockCANWriter
		setup    *Setup
		r        *Runner
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		bus0 = NewMockCANWriter(mockCtrl)
		bus2 = NewMockCANWriter(mockCtrl)

		var err error
		setup, err = LoadSetup(testRunnerConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should reject a missing profile", func() {
		cfg := testRunnerConfig()
		cfg.ProfilePath = "does_not_exist.yaml"
		_, err := LoadSetup(cfg)
		Expect(err).To(MatchError(ContainSubstring("load profile")))
	})

	It("should encode and route every message of a tick", func() {
		var frames []can.Frame
		bus0.EXPECT().WriteFrame(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f can.Frame) error {
				frames = append(frames, f)
				return nil
			}).AnyTimes()
		r = newRunner(setup, utils.BusWriters{0: bus0, 2: bus2}, nil, nil)

		out, err := r.Step(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(len(out.Messages)))
		Expect(frames[0].ID).To(Equal(uint32(0x340)))
		Expect(out.Messages[0].Kind).To(Equal(canmsg.KindLKAS11))
		Expect(r.sent).To(Equal(uint64(len(out.Messages))))
		Expect(r.tick).To(Equal(1))
	})

	It("should send the seeded LKAS counter on the first tick", func() {
		var first can.Frame
		bus0.EXPECT().WriteFrame(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f can.Frame) error {
				if f.ID == 0x340 {
					first = f
				}
				return nil
			}).AnyTimes()
		r = newRunner(setup, utils.BusWriters{0: bus0}, nil, nil)

		_, err := r.Step(context.Background())
		Expect(err).NotTo(HaveOccurred())

		got, err := setup.CANMap.Decode(first)
		Expect(err).NotTo(HaveOccurred())
		Expect(got["CF_Lkas_MsgCount"]).To(Equal(8.0))
		Expect(got["CF_Lkas_FcwOpt"]).To(Equal(1.0))
	})

	It("should skip buses without a writer", func() {
		r = newRunner(setup, utils.BusWriters{}, nil, nil)

		out, err := r.Step(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(r.skipped).To(Equal(uint64(len(out.Messages))))
		Expect(r.sent).To(BeZero())
	})

	It("should stop on a transmit error", func() {
		bus0.EXPECT().WriteFrame(gomock.Any(), gomock.Any()).Return(errors.New("bus off"))
		r = newRunner(setup, utils.BusWriters{0: bus0}, nil, nil)

		_, err := r.Step(context.Background())

		Expect(err).To(MatchError(ContainSubstring("bus off")))
		Expect(r.tick).To(Equal(1))
	})

	It("should record each tick", func() {
		rec, err := recorder.Open(filepath.Join(GinkgoT().TempDir(), "run"))
		Expect(err).NotTo(HaveOccurred())
		r = newRunner(setup, utils.BusWriters{}, rec, nil)

		for i := 0; i < 3; i++ {
			_, err := r.Step(context.Background())
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(rec.Flush()).To(Succeed())

		var n int
		Expect(rec.DB().QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&n)).To(Succeed())
		Expect(n).To(Equal(3))
		r.Close()
	})

	It("should close every bus writer", func() {
		bus0.EXPECT().Close().Return(nil)
		bus2.EXPECT().Close().Return(nil)
		r = newRunner(setup, utils.BusWriters{0: bus0, 2: bus2}, nil, nil)

		r.Close()
	})

	Context("when running a scenario", func() {
		BeforeEach(func() {
			scen, err := ParseScenario([]byte(shortScenario))
			Expect(err).NotTo(HaveOccurred())
			setup.Scenario = scen
		})

		It("should stop after the last tick", func() {
			bus0.EXPECT().WriteFrame(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			r = newRunner(setup, utils.BusWriters{0: bus0}, nil, nil)

			Expect(r.Run(context.Background())).To(Succeed())
			Expect(r.tick).To(Equal(5))
		})

		It("should stop when the context is canceled", func() {
			r = newRunner(setup, utils.BusWriters{}, nil, nil)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(r.Run(ctx)).To(MatchError(context.Canceled))
		})
	})
})
