package soft_bridge

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// hostFacts is what the software device reports about itself. It is read
// from the machine the driver runs on.
type hostFacts struct {
	modelName    string
	vendor       string
	computeUnits uint32
	clockMHz     uint32
	globalMem    uint64
}

const fallbackGlobalMem = 1 << 30

func readHostFacts() hostFacts {
	facts := hostFacts{
		modelName:    runtime.GOARCH + " CPU",
		vendor:       "go-clhost",
		computeUnits: uint32(runtime.NumCPU()),
		globalMem:    fallbackGlobalMem,
	}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		facts.computeUnits = uint32(n)
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		if name := strings.TrimSpace(infos[0].ModelName); name != "" {
			facts.modelName = name
		}
		if v := strings.TrimSpace(infos[0].VendorID); v != "" {
			facts.vendor = v
		}
		facts.clockMHz = uint32(infos[0].Mhz)
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
		facts.globalMem = vm.Total
	}
	return facts
}
