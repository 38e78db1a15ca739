package constants

import "github.com/amrelsisy2023/HiLyte-sub000/internal/entity"

// DefaultDivisions is the CSI MasterFormat-style seed taxonomy. Deployments
// can rename, recolor, add, or delete entries; the classification cascade
// treats code prefixes as a best-effort convention only.
var DefaultDivisions = []entity.Division{
	{ID: 1, Code: "01", Name: "General Requirements", Color: "#6B7280"},
	{ID: 2, Code: "02", Name: "Existing Conditions", Color: "#92400E"},
	{ID: 3, Code: "03", Name: "Concrete", Color: "#9CA3AF"},
	{ID: 4, Code: "04", Name: "Masonry", Color: "#B45309"},
	{ID: 5, Code: "05", Name: "Metals", Color: "#64748B"},
	{ID: 6, Code: "06", Name: "Wood, Plastics, and Composites", Color: "#A16207"},
	{ID: 7, Code: "07", Name: "Thermal and Moisture Protection", Color: "#0E7490"},
	{ID: 8, Code: "08", Name: "Openings", Color: "#1D4ED8"},
	{ID: 9, Code: "09", Name: "Finishes", Color: "#7C3AED"},
	{ID: 10, Code: "10", Name: "Specialties", Color: "#BE185D"},
	{ID: 11, Code: "11", Name: "Equipment", Color: "#15803D"},
	{ID: 12, Code: "12", Name: "Furnishings", Color: "#C2410C"},
	{ID: 13, Code: "14", Name: "Conveying Equipment", Color: "#4338CA"},
	{ID: 14, Code: "21", Name: "Fire Suppression", Color: "#DC2626"},
	{ID: 15, Code: "22", Name: "Plumbing", Color: "#0369A1"},
	{ID: 16, Code: "23", Name: "HVAC", Color: "#059669"},
	{ID: 17, Code: "26", Name: "Electrical", Color: "#D97706"},
	{ID: 18, Code: "27", Name: "Communications", Color: "#2563EB"},
	{ID: 19, Code: "28", Name: "Electronic Safety and Security", Color: "#9333EA"},
	{ID: 20, Code: "31", Name: "Earthwork", Color: "#78350F"},
	{ID: 21, Code: "32", Name: "Exterior Improvements", Color: "#3F6212"},
	{ID: 22, Code: "33", Name: "Utilities", Color: "#155E75"},
}
