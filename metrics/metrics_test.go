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

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gyamps/protein-mutation-sheet/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given Metrics that observed a run", t, func() {
		m := New("run1")
		m.Observe(pipeline.Stats{
			Files:      4,
			Recorded:   2,
			Unresolved: 1,
			Failed:     1,
			Isolates:   5,
			Records:    7,
		}, 3, 1500*time.Millisecond)

		Convey("You can gather gauges labelled with the run", func() {
			families, err := m.Registry().Gather()
			So(err, ShouldBeNil)

			values := make(map[string]float64)

			for _, mf := range families {
				for _, metric := range mf.GetMetric() {
					name := mf.GetName()

					for _, lp := range metric.GetLabel() {
						switch lp.GetName() {
						case "run":
							So(lp.GetValue(), ShouldEqual, "run1")
						case "outcome":
							name += "/" + lp.GetValue()
						}
					}

					values[name] = metric.GetGauge().GetValue()
				}
			}

			So(values["protein_mutation_sheet_files/total"], ShouldEqual, 4)
			So(values["protein_mutation_sheet_files/recorded"], ShouldEqual, 2)
			So(values["protein_mutation_sheet_files/unresolved"], ShouldEqual, 1)
			So(values["protein_mutation_sheet_files/failed"], ShouldEqual, 1)
			So(values["protein_mutation_sheet_isolates"], ShouldEqual, 5)
			So(values["protein_mutation_sheet_records"], ShouldEqual, 7)
			So(values["protein_mutation_sheet_mutated_cells"], ShouldEqual, 3)
			So(values["protein_mutation_sheet_duration_seconds"], ShouldEqual, 1.5)
			So(values["protein_mutation_sheet_finished_timestamp_seconds"], ShouldBeGreaterThan, 0)
		})

		Convey("You can write them to a textfile", func() {
			path := filepath.Join(t.TempDir(), "run.prom")

			err := m.WriteTextfile(path)
			So(err, ShouldBeNil)

			content, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(content), ShouldContainSubstring,
				`protein_mutation_sheet_files{outcome="recorded",run="run1"} 2`)
			So(string(content), ShouldContainSubstring,
				`protein_mutation_sheet_mutated_cells{run="run1"} 3`)
			So(string(content), ShouldContainSubstring, "# HELP protein_mutation_sheet_isolates")

			err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "run.prom"))
			So(err, ShouldNotBeNil)
		})
	})
}
