package model

// SubscriptionStats is the per-user aggregate over all owned subscriptions.
// EstimatedMonthlyExpense folds in active monthly prices plus active annual
// prices divided by 12; daily and weekly subscriptions do not contribute.
type SubscriptionStats struct {
	TotalSubscriptions      int     `json:"totalSubscriptions"`
	ActiveSubscriptions     int     `json:"activeSubscriptions"`
	CancelledSubscriptions  int     `json:"cancelledSubscriptions"`
	EstimatedMonthlyExpense float64 `json:"estimatedMonthlyExpense"`
}
