package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStat is the subset of *pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	MaxConns() int32
}

// RegisterDBPool exposes the trigger store's connection pool as gauges
// labelled with the binary that owns the pool.
func RegisterDBPool(reg prometheus.Registerer, binary string, pool *pgxpool.Pool) error {
	return RegisterPoolStat(reg, binary, func() PoolStat { return pool.Stat() })
}

// RegisterPoolStat registers autosetup_db_pool_* gauges read from stat on
// every scrape.
func RegisterPoolStat(reg prometheus.Registerer, binary string, stat func() PoolStat) error {
	gauge := func(name, help string, read func(PoolStat) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "autosetup",
			Subsystem:   "db_pool",
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels{"binary": binary},
		}, func() float64 { return float64(read(stat())) })
	}
	for _, c := range []prometheus.Collector{
		gauge("acquired_conns", "Trigger store connections currently in use.", PoolStat.AcquiredConns),
		gauge("idle_conns", "Trigger store connections idle in the pool.", PoolStat.IdleConns),
		gauge("total_conns", "Trigger store connections open.", PoolStat.TotalConns),
		gauge("max_conns", "Configured trigger store connection limit.", PoolStat.MaxConns),
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
