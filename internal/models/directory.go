package models

// Entity is a brand or competitor, the subject of a mention
type Entity struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	LogoURL      string `json:"logo_url,omitempty"`
	IsCompetitor bool   `json:"is_competitor"`
	IsPrimary    bool   `json:"is_primary"`
}

// Fallback series colors when an entity has none configured
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Directory resolves entity ids to display metadata
type Directory map[string]Entity

// NewDirectory indexes brands and competitors by id
func NewDirectory(brands []Brand, competitors []Competitor) Directory {
	dir := make(Directory, len(brands)+len(competitors))
	for _, b := range brands {
		dir[b.ID] = Entity{ID: b.ID, Name: b.Name, Color: b.Color, LogoURL: b.LogoURL, IsPrimary: b.IsPrimary}
	}
	for _, c := range competitors {
		dir[c.ID] = Entity{ID: c.ID, Name: c.Name, Color: c.Color, LogoURL: c.LogoURL, IsCompetitor: true}
	}
	return dir
}

// Lookup returns the entity for id. Unknown ids resolve to an entity named by the id itself.
func (d Directory) Lookup(id string) Entity {
	if e, ok := d[id]; ok {
		if e.Name == "" {
			e.Name = id
		}
		return e
	}
	return Entity{ID: id, Name: id}
}

// Name returns the display name for id
func (d Directory) Name(id string) string {
	return d.Lookup(id).Name
}

// ColorAt returns the entity color, or a palette color picked by index
func (d Directory) ColorAt(id string, index int) string {
	if c := d.Lookup(id).Color; c != "" {
		return c
	}
	return defaultColors[index%len(defaultColors)]
}
