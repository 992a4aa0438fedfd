package workflow

import (
	"testing"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s models.OrderStatus) *models.OrderStatus { return &s }

func TestEventFromPatch(t *testing.T) {
	tests := []struct {
		name       string
		status     *models.OrderStatus
		stationSet bool
		station    *int
		expected   Event
		wantErr    bool
	}{
		{name: "station only", stationSet: true, station: intPtr(1), expected: Assign{Station: 1}},
		{name: "station with in_progress", status: statusPtr(models.StatusInProgress), stationSet: true, station: intPtr(2), expected: Assign{Station: 2}},
		{name: "station with completed", status: statusPtr(models.StatusCompleted), stationSet: true, station: intPtr(2), wantErr: true},
		{name: "unknown station", stationSet: true, station: intPtr(5), wantErr: true},
		{name: "explicit null station", stationSet: true, expected: Unassign{}},
		{name: "null station back to new", status: statusPtr(models.StatusNew), stationSet: true, expected: Unassign{}},
		{name: "status new", status: statusPtr(models.StatusNew), expected: Unassign{}},
		{name: "waiting for parts", status: statusPtr(models.StatusWaitingForParts), expected: MarkWaitingForParts{}},
		{name: "completed", status: statusPtr(models.StatusCompleted), stationSet: true, expected: MarkCompleted{}},
		{name: "in_progress without station", status: statusPtr(models.StatusInProgress), wantErr: true},
		{name: "invoiced through patch", status: statusPtr(models.StatusInvoiced), wantErr: true},
		{name: "unknown status", status: statusPtr("broken"), wantErr: true},
		{name: "empty body", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := EventFromPatch(tt.status, tt.stationSet, tt.station)
			if tt.wantErr {
				var perr *PatchError
				assert.ErrorAs(t, err, &perr)
				assert.Nil(t, ev)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ev)
		})
	}
}
