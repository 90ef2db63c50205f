package relational

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

// Crosswalk sources.
const (
	CrosswalkFromGames = "games"
	CrosswalkFromAlias = "alias"
)

// Alias maps an alternate team spelling to a team id.
type Alias struct {
	Name   string `csv:"name"`
	TeamID int64  `csv:"team_id"`
}

// Crosswalk resolves team names from name-only tables to stable team ids.
// Names are matched case-insensitively after whitespace is collapsed.
type Crosswalk struct {
	entries   map[string]CrosswalkRow
	conflicts int
}

func NewCrosswalk() *Crosswalk {
	return &Crosswalk{entries: make(map[string]CrosswalkRow)}
}

// LoadAliases reads a name,team_id CSV file.
func LoadAliases(path string) ([]Alias, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open team alias file: %w", err)
	}
	defer f.Close()

	var aliases []Alias
	if err := gocsv.UnmarshalFile(f, &aliases); err != nil {
		return nil, fmt.Errorf("parse team alias file %s: %w", path, err)
	}
	return aliases, nil
}

// ReadAliases parses alias CSV content from r.
func ReadAliases(r io.Reader) ([]Alias, error) {
	var aliases []Alias
	if err := gocsv.Unmarshal(r, &aliases); err != nil {
		return nil, fmt.Errorf("parse team aliases: %w", err)
	}
	return aliases, nil
}

// Add registers name for teamID. An alias always wins over a game-derived
// name; a second game-derived id for the same name is counted as a conflict
// and ignored.
func (c *Crosswalk) Add(name string, teamID int64, source string) {
	key := normalizeTeamName(name)
	if key == "" {
		return
	}
	existing, ok := c.entries[key]
	switch {
	case !ok:
	case existing.TeamID == teamID:
		return
	case source == CrosswalkFromAlias && existing.Source != CrosswalkFromAlias:
	default:
		c.conflicts++
		return
	}
	c.entries[key] = CrosswalkRow{Name: strings.TrimSpace(name), TeamID: teamID, Source: source}
}

func (c *Crosswalk) AddAliases(aliases []Alias) {
	for _, a := range aliases {
		c.Add(a.Name, a.TeamID, CrosswalkFromAlias)
	}
}

func (c *Crosswalk) Resolve(name string) (int64, bool) {
	row, ok := c.entries[normalizeTeamName(name)]
	if !ok {
		return 0, false
	}
	return row.TeamID, true
}

// ResolvePtr is Resolve returning nil when the name is unknown.
func (c *Crosswalk) ResolvePtr(name string) *int64 {
	id, ok := c.Resolve(name)
	if !ok {
		return nil
	}
	return &id
}

func (c *Crosswalk) Conflicts() int {
	return c.conflicts
}

func (c *Crosswalk) Len() int {
	return len(c.entries)
}

// Rows returns the crosswalk sorted by name.
func (c *Crosswalk) Rows() []CrosswalkRow {
	out := make([]CrosswalkRow, 0, len(c.entries))
	for _, row := range c.entries {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

func normalizeTeamName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
