package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoolStat struct{ acquired, idle, total, max int32 }

func (f fakePoolStat) AcquiredConns() int32 { return f.acquired }
func (f fakePoolStat) IdleConns() int32     { return f.idle }
func (f fakePoolStat) TotalConns() int32    { return f.total }
func (f fakePoolStat) MaxConns() int32      { return f.max }

func TestRegisterPoolStat(t *testing.T) {
	reg := prometheus.NewRegistry()
	stat := fakePoolStat{acquired: 3, idle: 2, total: 5, max: 10}
	require.NoError(t, RegisterPoolStat(reg, "worker", func() PoolStat { return stat }))

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		require.Len(t, m.GetLabel(), 1)
		assert.Equal(t, "binary", m.GetLabel()[0].GetName())
		assert.Equal(t, "worker", m.GetLabel()[0].GetValue())
		got[mf.GetName()] = m.GetGauge().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"autosetup_db_pool_acquired_conns": 3,
		"autosetup_db_pool_idle_conns":     2,
		"autosetup_db_pool_total_conns":    5,
		"autosetup_db_pool_max_conns":      10,
	}, got)
}

func TestRegisterPoolStat_ReadsOnScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	stat := fakePoolStat{max: 10}
	require.NoError(t, RegisterPoolStat(reg, "core-api", func() PoolStat { return stat }))

	stat.acquired = 7
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "autosetup_db_pool_acquired_conns" {
			assert.Equal(t, float64(7), mf.GetMetric()[0].GetGauge().GetValue())
			return
		}
	}
	t.Fatal("acquired gauge not gathered")
}

func TestRegisterPoolStat_DuplicateBinary(t *testing.T) {
	reg := prometheus.NewRegistry()
	stat := func() PoolStat { return fakePoolStat{} }
	require.NoError(t, RegisterPoolStat(reg, "worker", stat))
	assert.Error(t, RegisterPoolStat(reg, "worker", stat))
}
