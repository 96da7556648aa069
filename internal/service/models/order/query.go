package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
// Zero-valued fields are ignored.
type QueryOrdersModel struct {
	Ids           []int64    `json:"ids,omitempty"`
	CustomerIds   []int64    `json:"customerIds,omitempty"`
	RestaurantIds []int64    `json:"restaurantIds,omitempty"`
	Statuses      []Status   `json:"statuses,omitempty"`
	CreatedFrom   *time.Time `json:"createdFrom,omitempty"`
	CreatedTo     *time.Time `json:"createdTo,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}
