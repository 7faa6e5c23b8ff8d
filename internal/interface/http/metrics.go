package handlers

import "expvar"

// Counters published under "identity" on /debug/vars.
var (
	metrics = expvar.NewMap("identity")
)

const (
	metricUsersCreated    = "users_created"
	metricUsersDeleted    = "users_deleted"
	metricLoginSucceeded  = "login_succeeded"
	metricLoginFailed     = "login_failed"
	metricPasswordChanged = "password_changed"
	metricInternalErrors  = "internal_errors"
)

func count(name string) { metrics.Add(name, 1) }
