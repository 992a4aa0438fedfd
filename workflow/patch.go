package workflow

import (
	"fmt"

	"github.com/autoservice-manager/workshop-api/models"
)

// PatchError reports a PATCH body that does not describe a single event
type PatchError struct {
	Reason string
}

func (e *PatchError) Error() string {
	return e.Reason
}

// EventFromPatch translates a partial order update into the event it asks for.
// stationSet distinguishes an explicit null work_station_id from an absent one.
func EventFromPatch(status *models.OrderStatus, stationSet bool, station *int) (Event, error) {
	if status != nil && !status.Valid() {
		return nil, &PatchError{Reason: fmt.Sprintf("unknown status %q", *status)}
	}

	if stationSet && station != nil {
		if !ValidStation(*station) {
			return nil, &PatchError{Reason: fmt.Sprintf("unknown work station %d", *station)}
		}
		if status != nil && *status != models.StatusInProgress {
			return nil, &PatchError{Reason: fmt.Sprintf("an order at a work station must be %s", models.StatusInProgress)}
		}
		return Assign{Station: *station}, nil
	}

	if status == nil {
		if stationSet {
			return Unassign{}, nil
		}
		return nil, &PatchError{Reason: "status or work_station_id is required"}
	}

	switch *status {
	case models.StatusNew:
		return Unassign{}, nil
	case models.StatusWaitingForParts:
		return MarkWaitingForParts{}, nil
	case models.StatusCompleted:
		return MarkCompleted{}, nil
	case models.StatusInProgress:
		return nil, &PatchError{Reason: "work_station_id is required to start an order"}
	default:
		return nil, &PatchError{Reason: "use the invoice endpoint to invoice an order"}
	}
}
