package main

import (
	"bytes"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("sccctl plan", func() {
	It("should print the schedule for the requested ticks", func() {
		cfg := testRunnerConfig()
		var out bytes.Buffer

		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{
			"plan", "--ticks", "2",
			"--map", cfg.MapPath,
			"--profile", cfg.ProfilePath,
			"--scenario", cfg.ScenarioPath,
			"--log-file", filepath.Join(GinkgoT().TempDir(), "plan.log"),
		})

		Expect(cmd.Execute()).To(Succeed())
		lines := strings.Split(out.String(), "\n")
		Expect(lines[0]).To(HavePrefix("tick     0 "))
		Expect(out.String()).To(ContainSubstring("tick     1 "))
		Expect(out.String()).NotTo(ContainSubstring("tick     2 "))
		Expect(out.String()).To(ContainSubstring("LKAS11@0{"))
	})

	It("should fail on a missing CAN map", func() {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{
			"plan",
			"--map", "missing.csv",
			"--log-file", filepath.Join(GinkgoT().TempDir(), "plan.log"),
		})
		Expect(cmd.Execute()).To(MatchError(ContainSubstring("load can map")))
	})
})
