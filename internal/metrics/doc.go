// Package metrics provides the Recorder interface used to observe build and
// preview activity, a NoopRecorder default, and a Prometheus implementation.
//
// Components receive a Recorder through injection and never check for nil;
// when metrics are disabled the NoopRecorder methods inline to nothing. The
// preview server exposes the Prometheus registry over /metrics when
// metrics.enabled is set.
package metrics
