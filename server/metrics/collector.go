// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zintix-labs/patternlab"
)

// RuntimeCollector 在每次 scrape 時讀取 Runtime 的機台池與 catalog 快取快照。
type RuntimeCollector struct {
	rt *patternlab.Runtime

	poolSize  *prometheus.Desc
	available *prometheus.Desc
	inflight  *prometheus.Desc
	rebuild   *prometheus.Desc
	panics    *prometheus.Desc
	fatals    *prometheus.Desc
	closed    *prometheus.Desc
	broken    *prometheus.Desc

	cacheEntries       *prometheus.Desc
	cacheHits          *prometheus.Desc
	cacheMisses        *prometheus.Desc
	cacheInvalidations *prometheus.Desc
}

func NewRuntimeCollector(rt *patternlab.Runtime) *RuntimeCollector {
	labels := []string{LabelGame, "gid"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &RuntimeCollector{
		rt:                 rt,
		poolSize:           desc("pool_size", "Configured machines per game."),
		available:          desc("pool_available", "Machines ready to be borrowed."),
		inflight:           desc("pool_inflight", "Machines currently serving a spin."),
		rebuild:            desc("pool_rebuild_total", "Machines rebuilt after panic or fatal error."),
		panics:             desc("pool_panics_total", "Recovered spin panics."),
		fatals:             desc("pool_fatals_total", "Fatal spin errors."),
		closed:             desc("pool_closed", "Whether the pool is closed (1) or serving (0)."),
		broken:             desc("pool_broken_backlog", "Retired machine records not yet drained."),
		cacheEntries:       desc("catalog_cache_entries", "Grid sizes held in the catalog cache."),
		cacheHits:          desc("catalog_cache_hits_total", "Catalog cache hits."),
		cacheMisses:        desc("catalog_cache_misses_total", "Catalog cache misses (catalog generated)."),
		cacheInvalidations: desc("catalog_cache_invalidations_total", "Catalog cache invalidations."),
	}
}

func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.poolSize, c.available, c.inflight, c.rebuild, c.panics, c.fatals, c.closed, c.broken,
		c.cacheEntries, c.cacheHits, c.cacheMisses, c.cacheInvalidations,
	} {
		ch <- d
	}
}

func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	for _, pm := range c.rt.Metrics() {
		lv := []string{pm.GameName, strconv.FormatUint(uint64(pm.GameID), 10)}
		closed := 0.0
		if pm.Closed {
			closed = 1
		}
		ch <- prometheus.MustNewConstMetric(c.poolSize, prometheus.GaugeValue, float64(pm.PoolSize), lv...)
		ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(pm.Available), lv...)
		ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(pm.Inflight), lv...)
		ch <- prometheus.MustNewConstMetric(c.rebuild, prometheus.CounterValue, float64(pm.Rebuild), lv...)
		ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(pm.Panics), lv...)
		ch <- prometheus.MustNewConstMetric(c.fatals, prometheus.CounterValue, float64(pm.Fatals), lv...)
		ch <- prometheus.MustNewConstMetric(c.closed, prometheus.GaugeValue, closed, lv...)
		ch <- prometheus.MustNewConstMetric(c.broken, prometheus.GaugeValue, float64(pm.BrokenBacklog), lv...)

		cache, err := c.rt.Lab().Cache(pm.GameID)
		if err != nil {
			continue
		}
		st := cache.Stats()
		ch <- prometheus.MustNewConstMetric(c.cacheEntries, prometheus.GaugeValue, float64(st.Entries), lv...)
		ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(st.Hits), lv...)
		ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(st.Misses), lv...)
		ch <- prometheus.MustNewConstMetric(c.cacheInvalidations, prometheus.CounterValue, float64(st.Invalidations), lv...)
	}
}
