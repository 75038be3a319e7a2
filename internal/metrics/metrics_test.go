package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementGroupsCreated()
		m.IncrementGroupsDeleted()
		m.IncrementMembershipChange("added")
		m.IncrementBalanceMutation("SET")
		m.IncrementPaymentChange("created")
		m.ObserveOperation("create_group", time.Now(), nil)
	})
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementGroupsCreated()
	m.IncrementGroupsCreated()
	m.IncrementGroupsDeleted()
	m.IncrementMembershipChange("added")
	m.IncrementBalanceMutation("ADJUST")
	m.IncrementPaymentChange("reversed")
	m.ObserveOperation("add_to_balance", time.Now(), nil)
	m.ObserveOperation("add_to_balance", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GroupsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GroupsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembershipChanges.WithLabelValues("added")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.MembershipChanges.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BalanceMutations.WithLabelValues("ADJUST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentChanges.WithLabelValues("reversed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
