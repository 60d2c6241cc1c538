package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
)

func StartHttpPProf(bind string) {
	go func() {
		log.Printf("[warn] pprof: %s", http.ListenAndServe(bind, nil))
	}()
}
