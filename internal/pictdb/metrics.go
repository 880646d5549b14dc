/* SPDX-License-Identifier: Apache-2.0
 *
 * Copyright 2023 Damian Peckett <damian@peckett>.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pictdb

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics instruments the database operations. One set is created per
// DB. Create registers it against Config.Registerer when that is
// non-nil; Open never registers its set. Every metric carries a constant
// "db" label holding the header's db_name, which Create always sets to
// CatName, so two databases registered against the same registerer get
// identical metrics and the second MustRegister panics.
type metrics struct {
	inserts       prometheus.Counter
	reads         prometheus.Counter
	deletes       prometheus.Counter
	dedupHits     prometheus.Counter
	variantsBuilt *prometheus.CounterVec
	gcRuns        prometheus.Counter
	gcBytesSaved  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, dbName string) *metrics {
	labels := prometheus.Labels{"db": dbName}

	m := &metrics{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pictdb_inserts_total",
			Help:        "Total number of successful insert operations.",
			ConstLabels: labels,
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pictdb_reads_total",
			Help:        "Total number of successful read operations.",
			ConstLabels: labels,
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pictdb_deletes_total",
			Help:        "Total number of successful delete operations.",
			ConstLabels: labels,
		}),
		dedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pictdb_dedup_hits_total",
			Help:        "Total number of inserts that shared an existing blob offset.",
			ConstLabels: labels,
		}),
		variantsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pictdb_variants_built_total",
			Help:        "Total number of lazily materialized resize variants, by variant.",
			ConstLabels: labels,
		}, []string{"variant"}),
		gcRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pictdb_gc_runs_total",
			Help:        "Total number of completed garbage_collect runs.",
			ConstLabels: labels,
		}),
		gcBytesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pictdb_gc_bytes_saved_total",
			Help:        "Total bytes reclaimed across all garbage_collect runs.",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.inserts, m.reads, m.deletes, m.dedupHits, m.variantsBuilt, m.gcRuns, m.gcBytesSaved)
	}

	return m
}
