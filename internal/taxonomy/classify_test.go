package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

func TestClassify(t *testing.T) {
	available := constants.DefaultDivisions

	tests := []struct {
		name     string
		hint     entity.DivisionRef
		itemText string
		category constants.Category
		wantCode string
	}{
		{
			name:     "exact code match",
			hint:     entity.DivisionRef{Code: "08"},
			itemText: "HOLLOW METAL DOOR",
			wantCode: "08",
		},
		{
			name:     "exact id beats keyword",
			hint:     entity.DivisionRef{ID: 3},
			itemText: "DOOR FRAME",
			wantCode: "03",
		},
		{
			name:     "name substring match",
			hint:     entity.DivisionRef{Name: "masonry"},
			itemText: "CMU WALL",
			wantCode: "04",
		},
		{
			name:     "full masterformat code lands on prefix",
			hint:     entity.DivisionRef{Code: "08 10 00"},
			itemText: "HM DOOR AND FRAME",
			wantCode: "08",
		},
		{
			name:     "keyword scan over item text",
			hint:     entity.DivisionRef{},
			itemText: "CAST-IN-PLACE CONCRETE FOOTING",
			wantCode: "03",
		},
		{
			name:     "category default for equipment",
			hint:     entity.DivisionRef{},
			itemText: "WIDGET X-200",
			category: constants.Equipment,
			wantCode: "23",
		},
		{
			name:     "category default for note",
			hint:     entity.DivisionRef{},
			itemText: "SEE STRUCT DWGS",
			category: constants.Note,
			wantCode: "01",
		},
		{
			name:     "absolute fallback is first division",
			hint:     entity.DivisionRef{},
			itemText: "XYZZY",
			category: constants.Fixture,
			wantCode: "01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.hint, tt.itemText, tt.category, available)
			require.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestClassifyAlwaysReturnsMember(t *testing.T) {
	available := []entity.Division{
		{ID: 7, Code: "26", Name: "Electrical"},
		{ID: 9, Code: "09", Name: "Finishes"},
	}
	got := Classify(entity.DivisionRef{Code: "99"}, "UNKNOWN THING", constants.Material, available)
	require.Contains(t, available, got)
}

func TestClassifyEmptyList(t *testing.T) {
	got := Classify(entity.DivisionRef{}, "anything", constants.Material, nil)
	require.Equal(t, "01", got.Code)
	require.Equal(t, "General Requirements", got.Name)
}

func TestSuggestCode(t *testing.T) {
	require.Equal(t, "03", SuggestCode("CONCRETE FOOTING SCHEDULE"))
	require.Equal(t, "08", SuggestCode("hollow metal door"))
	require.Equal(t, "", SuggestCode("nothing recognizable"))
}
