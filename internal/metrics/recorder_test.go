package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("reference", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("reference", ResultSuccess)
	r.IncBuildOutcome("success")
	r.SetPagesGenerated(12)
	r.SetLiveReloadClients(0)
}
