package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPlaced = "PLACED"
	OrderStatusReady  = "READY"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	EmployeeRoleCashier = "CASHIER"
	EmployeeRoleManager = "MANAGER"
)

// ── Group B: Response labels (no DB constraint) ──

const (
	NotificationSent                 = "sent"
	NotificationFailed               = "failed"
	NotificationSkippedNoAddress     = "skipped_no_address"
	NotificationSkippedConfigMissing = "skipped_config_missing"
)

const (
	ZReportStatusSuccess    = "SUCCESS"
	ZReportStatusAlreadyRun = "ALREADY_RUN"
	ZReportStatusError      = "ERROR"
)

const (
	PricePolicyTrust  = "trust"
	PricePolicyVerify = "verify"
)

const (
	EventOrderPlaced   = "order.placed"
	EventOrderReady    = "order.ready"
	EventZReportClosed = "zreport.closed"

	EventInventoryRestocked = "inventory.restocked"
)
