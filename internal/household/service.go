// Package household implements household ("foyer") management for the
// owning user: creation, lookup, and edits, with field validation and the
// fixed dietary-restriction vocabulary.
package household

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mlecomte/foyer/internal/apperr"
	"github.com/mlecomte/foyer/internal/model"
	"github.com/mlecomte/foyer/internal/store"
)

const (
	MinMembers = 1
	MaxMembers = 20
)

// Restrictions is the fixed dietary-restriction vocabulary offered by the
// app. Household restrictions are a subset of it with toggle semantics.
var Restrictions = []string{
	"Vegetarian",
	"Vegan",
	"Sesame",
	"Coconut",
	"Legumes",
	"Tree Nuts",
	"Gluten",
	"Shellfish",
	"Lactose",
	"Sulfites",
	"Triglycerides",
	"Pork-Free",
}

// Fields carries the user-editable household fields.
type Fields struct {
	Name         string   `json:"name"`
	MemberCount  int      `json:"member_count"`
	Restrictions []string `json:"restrictions"`
	Preferences  string   `json:"preferences"`
	IsPublic     bool     `json:"is_public"`
}

type Service struct {
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewService(households *store.HouseholdStore, logger *slog.Logger) *Service {
	return &Service{households: households, logger: logger}
}

// Create validates the fields and inserts a household owned by ownerID. The
// owner's has_households flag is set as part of the same write.
func (s *Service) Create(ownerID int64, f Fields) (*model.Household, error) {
	if ownerID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	clean, err := validate(f)
	if err != nil {
		return nil, err
	}

	h, err := s.households.Create(ownerID, clean.Name, clean.MemberCount, clean.Restrictions, clean.Preferences, clean.IsPublic)
	if err != nil {
		return nil, apperr.Store("create household", err)
	}
	s.logger.Info("household created", "household_id", h.ID, "owner_id", ownerID)
	return h, nil
}

// Get returns one of the owner's households.
func (s *Service) Get(ownerID, householdID int64) (*model.Household, error) {
	if ownerID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	h, err := s.households.GetByID(ownerID, householdID)
	if err != nil {
		return nil, apperr.Store("get household", err)
	}
	if h == nil {
		return nil, apperr.ErrNotFound
	}
	return h, nil
}

// List returns the owner's households, newest first.
func (s *Service) List(ownerID int64) ([]model.Household, error) {
	if ownerID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	households, err := s.households.ListByOwner(ownerID)
	if err != nil {
		return nil, apperr.Store("list households", err)
	}
	if households == nil {
		households = []model.Household{}
	}
	return households, nil
}

// Update validates and applies the full edit. Re-applying the same
// restriction set twice yields the same stored set. There is no delete
// operation: households are permanent once created.
func (s *Service) Update(ownerID, householdID int64, f Fields) (*model.Household, error) {
	if ownerID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	clean, err := validate(f)
	if err != nil {
		return nil, err
	}

	existing, err := s.households.GetByID(ownerID, householdID)
	if err != nil {
		return nil, apperr.Store("get household", err)
	}
	if existing == nil {
		return nil, apperr.ErrNotFound
	}

	h, err := s.households.Update(ownerID, householdID, clean.Name, clean.MemberCount, clean.Restrictions, clean.Preferences, clean.IsPublic)
	if err != nil {
		return nil, apperr.Store("update household", err)
	}
	return h, nil
}

// validate normalizes the fields or reports the first violation. Nothing is
// written when validation fails.
func validate(f Fields) (Fields, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, apperr.Validation("name", "required")
	}
	if f.MemberCount == 0 {
		f.MemberCount = MinMembers
	}
	if f.MemberCount < MinMembers || f.MemberCount > MaxMembers {
		return f, apperr.Validation("member_count", fmt.Sprintf("must be between %d and %d", MinMembers, MaxMembers))
	}

	// Set semantics: unknown entries are rejected, duplicates collapse while
	// keeping first-seen order.
	seen := make(map[string]struct{}, len(f.Restrictions))
	clean := make([]string, 0, len(f.Restrictions))
	for _, r := range f.Restrictions {
		if !validRestriction(r) {
			return f, apperr.Validation("restrictions", fmt.Sprintf("unknown restriction %q", r))
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		clean = append(clean, r)
	}
	f.Restrictions = clean
	return f, nil
}

func validRestriction(name string) bool {
	for _, r := range Restrictions {
		if r == name {
			return true
		}
	}
	return false
}
