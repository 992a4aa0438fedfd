package workflow

import "github.com/autoservice-manager/workshop-api/models"

// Stations lists the repair bays of the workshop
var Stations = []int{1, 2}

// ValidStation reports whether id names a repair bay
func ValidStation(id int) bool {
	for _, s := range Stations {
		if s == id {
			return true
		}
	}
	return false
}

// Occupant returns the order holding the given station, if any.
func Occupant(orders []models.Order, station int) (*models.Order, bool) {
	for i := range orders {
		if orders[i].WorkStationID != nil && *orders[i].WorkStationID == station {
			return &orders[i], true
		}
	}
	return nil, false
}
