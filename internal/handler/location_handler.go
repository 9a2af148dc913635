package handler

import (
	"net/http"

	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/repository"
)

// LocationHandler serves the read-only City -> Zone -> Ward hierarchy and
// the flat department/designation lookups (spec.md §4.2 step 4's scope
// filtering applies to cities and zones: a city-scoped caller only sees the
// cities their permission grants them and the zones under those cities).
// ListWards, ListDepartments and ListDesignations apply no city-scope check.
type LocationHandler struct {
	locations *repository.LocationRepository
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(locations *repository.LocationRepository) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// ListCities returns every city in scope for the caller.
func (h *LocationHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.locations.ListCities(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	scope, ok := middleware.GetCityScope(r.Context())
	if !ok || scope.All {
		WriteSuccess(w, map[string]interface{}{"cities": cities})
		return
	}

	filtered := cities[:0]
	for _, c := range cities {
		if scope.Contains(c.ID) {
			filtered = append(filtered, c)
		}
	}
	WriteSuccess(w, map[string]interface{}{"cities": filtered})
}

// ListZones returns the zones belonging to a city.
func (h *LocationHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	cityID, err := parseID(r, "cityID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid city id")
		return
	}

	if scope, ok := middleware.GetCityScope(r.Context()); ok && !scope.Contains(cityID) {
		WriteError(w, http.StatusForbidden, "forbidden", "city is outside your access scope")
		return
	}

	zones, err := h.locations.ListZonesByCity(r.Context(), cityID)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"zones": zones})
}

// ListWards returns the wards belonging to a zone.
func (h *LocationHandler) ListWards(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "zoneID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid zone id")
		return
	}

	wards, err := h.locations.ListWardsByZone(r.Context(), zoneID)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"wards": wards})
}

// ListDepartments returns every department lookup row.
func (h *LocationHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.locations.ListDepartments(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"departments": departments})
}

// ListDesignations returns every designation lookup row.
func (h *LocationHandler) ListDesignations(w http.ResponseWriter, r *http.Request) {
	designations, err := h.locations.ListDesignations(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"designations": designations})
}
