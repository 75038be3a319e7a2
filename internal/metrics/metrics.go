// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the group registry and balance ledger.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	GroupsCreated     prometheus.Counter
	GroupsDeleted     prometheus.Counter
	MembershipChanges *prometheus.CounterVec
	BalanceMutations  *prometheus.CounterVec
	PaymentChanges    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GroupsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fairsplit_groups_created_total",
			Help: "Total number of groups created",
		}),
		GroupsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fairsplit_groups_deleted_total",
			Help: "Total number of group delete requests that committed",
		}),
		MembershipChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fairsplit_membership_changes_total",
			Help: "Membership rows added or removed",
		}, []string{"change"}),
		BalanceMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fairsplit_balance_mutations_total",
			Help: "Committed balance mutations by type",
		}, []string{"type"}),
		PaymentChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fairsplit_payment_changes_total",
			Help: "Payments created or reversed",
		}, []string{"change"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fairsplit_operation_duration_seconds",
			Help:    "Duration of registry and ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation", "outcome"}),
	}
}

// IncrementGroupsCreated records a committed group creation.
func (m *Metrics) IncrementGroupsCreated() {
	if m == nil {
		return
	}
	m.GroupsCreated.Inc()
}

// IncrementGroupsDeleted records a committed group deletion.
func (m *Metrics) IncrementGroupsDeleted() {
	if m == nil {
		return
	}
	m.GroupsDeleted.Inc()
}

// IncrementMembershipChange records a membership "added" or "removed".
func (m *Metrics) IncrementMembershipChange(change string) {
	if m == nil {
		return
	}
	m.MembershipChanges.WithLabelValues(change).Inc()
}

// IncrementBalanceMutation records a committed balance mutation of the given entry type.
func (m *Metrics) IncrementBalanceMutation(entryType string) {
	if m == nil {
		return
	}
	m.BalanceMutations.WithLabelValues(entryType).Inc()
}

// IncrementPaymentChange records a payment "created" or "reversed".
func (m *Metrics) IncrementPaymentChange(change string) {
	if m == nil {
		return
	}
	m.PaymentChanges.WithLabelValues(change).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation and the error it returned.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OperationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
