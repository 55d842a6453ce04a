package main

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

//go:generate mockgen -destination "mock_utils_test.go" -package $GOPACKAGE -write_package_comment=false scc-control-core/utils CANWriter

func TestClosedLoop(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Closed Loop Suite")
}
