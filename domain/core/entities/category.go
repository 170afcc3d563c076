package entities

import (
	"time"

	pkgerrors "neurovault/pkg/errors"
)

// Category is reference data: the fixed set of buckets the classifier sorts
// entries into. Categories are read-only inputs to discovery and
// consolidation; only seeding code writes them.
type Category struct {
	id          string
	name        string
	description string
	keywords    []string
	isActive    bool
	order       int
	createdAt   time.Time
}

// NewCategory creates a category definition
func NewCategory(id, name, description string, keywords []string, order int) (*Category, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("category ID cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("category name cannot be empty")
	}

	return &Category{
		id:          id,
		name:        name,
		description: description,
		keywords:    keywords,
		isActive:    true,
		order:       order,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructCategory reconstructs a category from repository data
func ReconstructCategory(id, name, description string, keywords []string, isActive bool, order int, createdAt time.Time) *Category {
	return &Category{
		id:          id,
		name:        name,
		description: description,
		keywords:    keywords,
		isActive:    isActive,
		order:       order,
		createdAt:   createdAt,
	}
}

// ID returns the category's unique identifier
func (c *Category) ID() string { return c.id }

// Name returns the category name
func (c *Category) Name() string { return c.name }

// Description returns the category description
func (c *Category) Description() string { return c.description }

// IsActive reports whether the category participates in discovery
func (c *Category) IsActive() bool { return c.isActive }

// Order returns the display/priority order
func (c *Category) Order() int { return c.order }

// CreatedAt returns when the category was created
func (c *Category) CreatedAt() time.Time { return c.createdAt }

// Keywords returns the matching hints handed to the classifier
func (c *Category) Keywords() []string {
	keywords := make([]string, len(c.keywords))
	copy(keywords, c.keywords)
	return keywords
}

// Deactivate removes the category from future discovery input
func (c *Category) Deactivate() {
	c.isActive = false
}

// DefaultCategories returns the stock taxonomy seeded into fresh
// installations. "uncategorized" is the classifier's fallback bucket and
// sorts last.
func DefaultCategories() []*Category {
	defs := []struct {
		name        string
		description string
		keywords    []string
		order       int
	}{
		{"work", "Professional tasks, projects, meetings, deadlines, career development",
			[]string{"work", "job", "project", "meeting", "deadline", "career", "office", "boss", "colleague", "client"}, 1},
		{"personal", "Personal life, self-reflection, diary entries, daily experiences",
			[]string{"personal", "myself", "life", "diary", "day", "experience", "feeling", "thought"}, 2},
		{"health", "Physical and mental health, exercise, diet, medical, wellness",
			[]string{"health", "exercise", "gym", "diet", "sleep", "doctor", "medical", "wellness", "mental", "stress"}, 3},
		{"finance", "Money, investments, budgeting, expenses, savings, financial planning",
			[]string{"money", "finance", "investment", "budget", "expense", "savings", "bank", "pay", "cost", "income"}, 4},
		{"learning", "Education, courses, books, skills development, knowledge acquisition",
			[]string{"learn", "study", "course", "book", "skill", "education", "knowledge", "training", "read"}, 5},
		{"relationships", "Family, friends, romantic relationships, social connections",
			[]string{"family", "friend", "relationship", "partner", "love", "social", "people", "connection"}, 6},
		{"goals", "Objectives, ambitions, plans, milestones, achievements",
			[]string{"goal", "objective", "plan", "milestone", "achievement", "target", "ambition", "dream"}, 7},
		{"ideas", "Creative thoughts, innovations, brainstorming, concepts",
			[]string{"idea", "creative", "innovation", "concept", "brainstorm", "inspiration", "imagine"}, 8},
		{"travel", "Trips, vacations, places, adventures, exploration",
			[]string{"travel", "trip", "vacation", "place", "adventure", "explore", "visit", "destination"}, 9},
		{"projects", "Side projects, hobbies, creative work, building things",
			[]string{"project", "build", "create", "hobby", "side", "develop", "make", "design"}, 10},
		{"uncategorized", "Entries that do not fit into other categories", nil, 99},
	}

	categories := make([]*Category, 0, len(defs))
	for _, def := range defs {
		categories = append(categories, ReconstructCategory(
			"cat-"+def.name, def.name, def.description, def.keywords, true, def.order, time.Now(),
		))
	}
	return categories
}
