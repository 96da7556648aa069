package report

import (
	"time"

	"github.com/corray333/food-delivery/internal/service/models/order"
)

// TrendInterval is the truncation unit for order trends.
type TrendInterval string

const (
	IntervalDay   TrendInterval = "day"
	IntervalMonth TrendInterval = "month"
)

// DateRange bounds a report query; either side may be open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// RestaurantOrderCount is one row of the popular-restaurants report.
type RestaurantOrderCount struct {
	RestaurantID int64 `json:"restaurantId"`
	OrderCount   int64 `json:"orderCount"`
}

// TrendBucket is the order count for one truncated creation date.
type TrendBucket struct {
	Period     time.Time `json:"period"`
	OrderCount int64     `json:"orderCount"`
}

// StatusCount is the order count for one status value.
type StatusCount struct {
	Status order.Status `json:"status"`
	Count  int64        `json:"count"`
}

// PlatformHealth is a coarse snapshot of delivery activity derived from
// the status histogram.
type PlatformHealth struct {
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Pending    int64 `json:"pending"`
}
