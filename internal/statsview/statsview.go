// Package statsview serves Go runtime statistics of the running emulator
// over HTTP. Underlying functionality provided by "github.com/go-echarts/statsview".
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// Address is the address the statistics server listens on.
const Address = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the statistics server in a new goroutine.
func Launch(logger *log.Logger) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		mgr.Start()
	}()

	logger.Info("Stats server available", log.String("url", "http://"+Address+url))
}
