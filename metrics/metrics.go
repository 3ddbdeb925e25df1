/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Author: Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package metrics exports the statistics of a comparison run as Prometheus
// metrics, written to a file for the node exporter textfile collector.

package metrics

import (
	"time"

	"github.com/Gyamps/protein-mutation-sheet/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "protein_mutation_sheet"
	runLabel  = "run"
)

// Metrics holds gauges describing a single run.
type Metrics struct {
	registry   *prometheus.Registry
	files      *prometheus.GaugeVec
	isolates   prometheus.Gauge
	records    prometheus.Gauge
	mutated    prometheus.Gauge
	duration   prometheus.Gauge
	finishedAt prometheus.Gauge
}

// New returns Metrics with every gauge labelled with the given run id.
func New(runID string) *Metrics {
	labels := prometheus.Labels{runLabel: runID}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "files",
			Help:        "Alignment files in the run, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		isolates:   newGauge("isolates", "Isolates given a row in the table.", labels),
		records:    newGauge("records", "Isolate mutations recorded across all proteins.", labels),
		mutated:    newGauge("mutated_cells", "Table cells that differ from the reference.", labels),
		duration:   newGauge("duration_seconds", "Time taken by the run.", labels),
		finishedAt: newGauge("finished_timestamp_seconds", "Unix time the run finished.", labels),
	}

	m.registry.MustRegister(m.files, m.isolates, m.records, m.mutated, m.duration, m.finishedAt)

	return m
}

func newGauge(name, help string, labels prometheus.Labels) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        name,
		Help:        help,
		ConstLabels: labels,
	})
}

// Observe sets our gauges from the stats of a finished run, the number of
// mutated cells in its table and how long it took.
func (m *Metrics) Observe(stats pipeline.Stats, mutated int, elapsed time.Duration) {
	m.files.WithLabelValues("total").Set(float64(stats.Files))
	m.files.WithLabelValues("recorded").Set(float64(stats.Recorded))
	m.files.WithLabelValues("unresolved").Set(float64(stats.Unresolved))
	m.files.WithLabelValues("failed").Set(float64(stats.Failed))
	m.isolates.Set(float64(stats.Isolates))
	m.records.Set(float64(stats.Records))
	m.mutated.Set(float64(mutated))
	m.duration.Set(elapsed.Seconds())
	m.finishedAt.SetToCurrentTime()
}

// Registry returns the registry our gauges are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes our metrics to the given path in the text exposition
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
