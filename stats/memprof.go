package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

// MemProfiler writes a heap profile to dir every interval.
func MemProfiler(dir string, interval time.Duration) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.Fatalf("[fatal] memprofile: %s", err)
	}

	ticker := time.NewTicker(interval)
	i := 0
	for range ticker.C {
		filename := filepath.Join(dir, fmt.Sprintf("memprof-%03d.pprof", i))
		f, err := os.Create(filename)
		if err != nil {
			log.Fatalf("[fatal] memprofile: %s", err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Printf("[warn] memprofile: %s", err)
		}
		f.Close()
		i++
	}
}
