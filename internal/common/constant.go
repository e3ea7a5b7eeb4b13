package common

// Operation names recorded in logs and the audit trail.
const (
	OperationSignIn  = "signin"
	OperationRefresh = "refresh"
)
