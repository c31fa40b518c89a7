package handler

import (
	"log/slog"
	"net/http"

	"github.com/mlecomte/foyer/internal/recipe"
)

type RecipeHandler struct {
	recipes *recipe.Service
	logger  *slog.Logger
}

func NewRecipeHandler(svc *recipe.Service, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: svc, logger: logger}
}

// ListSection handles GET /api/recipes/sections/{section}
func (h *RecipeHandler) ListSection(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	summaries, err := h.recipes.ListSection(r.Context(), section)
	if err != nil {
		if _, known := recipe.Sections[section]; !known {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown section"})
			return
		}
		h.logger.Error("list recipe section", "section", section, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "recipe service unavailable"})
		return
	}
	if summaries == nil {
		summaries = []recipe.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get recipe", "id", id, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "recipe service unavailable"})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
