package firebase

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"

	"github.com/polkiloo/courieragent/internal/domain/model"
	"github.com/polkiloo/courieragent/internal/domain/repository"
)

// decodeTree converts a raw order_tracking value into nodes keyed by order
// id. The database returns objects with dense integer keys as arrays, so both
// shapes are accepted. Children with non-numeric keys are skipped.
func decodeTree(raw interface{}) map[int64]model.TrackingSnapshot {
	out := make(map[int64]model.TrackingSnapshot)
	switch v := raw.(type) {
	case map[string]interface{}:
		for key, child := range v {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				continue
			}
			if node, ok := child.(map[string]interface{}); ok {
				out[id] = decodeNode(id, node)
			}
		}
	case []interface{}:
		for i, child := range v {
			if node, ok := child.(map[string]interface{}); ok {
				out[int64(i)] = decodeNode(int64(i), node)
			}
		}
	}
	return out
}

// decodeNode is total: absent or mistyped fields keep their zero value and a
// missing orderId falls back to the key.
func decodeNode(key int64, node map[string]interface{}) model.TrackingSnapshot {
	s := model.TrackingSnapshot{
		OrderID:           asInt(node["orderId"]),
		DriverID:          asString(node["driverId"]),
		CustomerID:        asString(node["customerId"]),
		Status:            asString(node["status"]),
		ShippingAddressID: asInt(node["shippingAddressId"]),
		ShippingAddress:   asString(node["shippingAddress"]),
		StoreAddress:      asString(node["storeAddress"]),
		CustomerName:      asString(node["customerName"]),
		CustomerPhone:     asString(node["customerPhone"]),
		AssignedAt:        asString(node["assignedAt"]),
		CreatedAt:         asString(node["createdAt"]),
		UpdatedAt:         asString(node["updatedAt"]),
	}
	if s.OrderID == 0 {
		s.OrderID = key
	}
	if loc, ok := node["driverLocation"].(map[string]interface{}); ok {
		s.DriverLocation = &model.TrackingLocation{
			Latitude:  asFloat(loc["latitude"]),
			Longitude: asFloat(loc["longitude"]),
			UpdatedAt: asInt(loc["updatedAt"]),
		}
	}
	return s
}

// diffTrees lists the events that turn prev into cur, ordered by order id.
func diffTrees(prev, cur map[int64]model.TrackingSnapshot) []repository.TrackingEvent {
	ids := make([]int64, 0, len(prev)+len(cur))
	for id := range prev {
		ids = append(ids, id)
	}
	for id := range cur {
		if _, ok := prev[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var events []repository.TrackingEvent
	for _, id := range ids {
		before, had := prev[id]
		after, has := cur[id]
		switch {
		case !had && has:
			events = append(events, repository.TrackingEvent{Kind: repository.EventAdded, OrderID: id, Snapshot: after})
		case had && !has:
			events = append(events, repository.TrackingEvent{Kind: repository.EventRemoved, OrderID: id})
		case !reflect.DeepEqual(before, after):
			events = append(events, repository.TrackingEvent{Kind: repository.EventChanged, OrderID: id, Snapshot: after})
		}
	}
	return events
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

func asInt(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}
