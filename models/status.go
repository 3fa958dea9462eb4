package models

import "strings"

// OrderStatus is the lifecycle state of a table's order
type OrderStatus string

const (
	StatusWaiting OrderStatus = "waiting"
	StatusReady   OrderStatus = "ready"
	StatusPaid    OrderStatus = "paid"
)

// OrderStatuses lists every status in display order
var OrderStatuses = []OrderStatus{StatusWaiting, StatusReady, StatusPaid}

// statusLabels are the labels shown to the café staff
var statusLabels = map[OrderStatus]string{
	StatusWaiting: "В ожидании",
	StatusReady:   "Готово",
	StatusPaid:    "Оплачено",
}

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the localized label, or the raw value for unknown statuses
func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseOrderStatus normalizes a status token. Matching is case-insensitive.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", false
	}
	return status, true
}

// StatusFromLabel translates a localized label (e.g. "оплачено") back to its status
func StatusFromLabel(label string) (OrderStatus, bool) {
	needle := strings.ToLower(strings.TrimSpace(label))
	for status, l := range statusLabels {
		if strings.ToLower(l) == needle {
			return status, true
		}
	}
	return "", false
}
