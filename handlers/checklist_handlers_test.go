package handlers

import (
	"testing"

	"github.com/google/uuid"
	"p9e.in/slf/models"
)

func TestCollapseResponses(t *testing.T) {
	inspectionID := uuid.New()
	responderID := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()
	itemC := uuid.New()

	answer := func(itemID uuid.UUID, value string) models.ChecklistResponse {
		return models.ChecklistResponse{
			InspectionID: inspectionID,
			ItemID:       itemID,
			ResponderID:  responderID,
			Payload:      models.JSONMap{"value": value},
		}
	}

	tests := []struct {
		name  string
		batch []models.ChecklistResponse
		want  []models.ChecklistResponse
	}{
		{
			name:  "no repeats pass through",
			batch: []models.ChecklistResponse{answer(itemA, "yes"), answer(itemB, "no")},
			want:  []models.ChecklistResponse{answer(itemA, "yes"), answer(itemB, "no")},
		},
		{
			name:  "repeated item keeps the last answer",
			batch: []models.ChecklistResponse{answer(itemA, "first"), answer(itemB, "ok"), answer(itemA, "second")},
			want:  []models.ChecklistResponse{answer(itemA, "second"), answer(itemB, "ok")},
		},
		{
			name: "three answers for one item collapse to one",
			batch: []models.ChecklistResponse{
				answer(itemC, "v1"), answer(itemC, "v2"), answer(itemC, "v3"),
			},
			want: []models.ChecklistResponse{answer(itemC, "v3")},
		},
		{
			name:  "single entry untouched",
			batch: []models.ChecklistResponse{answer(itemA, "yes")},
			want:  []models.ChecklistResponse{answer(itemA, "yes")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collapseResponses(tt.batch)
			if len(got) != len(tt.want) {
				t.Fatalf("collapsed to %d rows, expected %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ItemID != tt.want[i].ItemID {
					t.Errorf("row %d item = %s, expected %s", i, got[i].ItemID, tt.want[i].ItemID)
				}
				if got[i].Payload["value"] != tt.want[i].Payload["value"] {
					t.Errorf("row %d payload = %v, expected %v", i, got[i].Payload, tt.want[i].Payload)
				}
			}
			// Every surviving row targets a distinct conflict key, so the
			// batch can never make the upsert touch one row twice.
			seen := map[uuid.UUID]bool{}
			for _, resp := range got {
				if seen[resp.ItemID] {
					t.Errorf("item %s appears twice after collapsing", resp.ItemID)
				}
				seen[resp.ItemID] = true
			}
		})
	}
}
