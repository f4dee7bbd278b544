package templates

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Soypete/streambuddy/types"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// General is the template context used when no game was detected.
const General types.GameContext = "general"

// Store gives read access to active templates for one game context.
// Results are ordered by priority descending, then position.
type Store interface {
	ActiveTemplates(ctx context.Context, game types.GameContext) ([]types.ResponseTemplate, error)
}

// ContextOf maps NoGame to General.
func ContextOf(game types.GameContext) types.GameContext {
	if game == types.NoGame {
		return General
	}
	return game
}

// StaticStore serves a fixed template set from memory.
type StaticStore struct {
	byGame map[types.GameContext][]types.ResponseTemplate
}

// NewStaticStore indexes templates by game. Inactive templates are kept out.
func NewStaticStore(templates []types.ResponseTemplate) *StaticStore {
	s := &StaticStore{byGame: make(map[types.GameContext][]types.ResponseTemplate)}
	for _, t := range templates {
		if !t.Active {
			continue
		}
		g := ContextOf(t.Game)
		s.byGame[g] = append(s.byGame[g], t)
	}
	for _, ts := range s.byGame {
		sortTemplates(ts)
	}
	return s
}

// ActiveTemplates returns a copy of the templates for game.
func (s *StaticStore) ActiveTemplates(_ context.Context, game types.GameContext) ([]types.ResponseTemplate, error) {
	ts := s.byGame[ContextOf(game)]
	out := make([]types.ResponseTemplate, len(ts))
	copy(out, ts)
	return out, nil
}

func sortTemplates(ts []types.ResponseTemplate) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Priority != ts[j].Priority {
			return ts[i].Priority > ts[j].Priority
		}
		return ts[i].Position < ts[j].Position
	})
}

type fileTemplate struct {
	Game     string   `yaml:"game"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
	Priority int      `yaml:"priority"`
	Active   *bool    `yaml:"active"`
}

type templateFile struct {
	Templates []fileTemplate `yaml:"templates"`
}

// LoadFile reads templates from a YAML file.
func LoadFile(path string) ([]types.ResponseTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML template document. Templates default to active and
// get their position from file order.
func Parse(data []byte) ([]types.ResponseTemplate, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	out := make([]types.ResponseTemplate, 0, len(f.Templates))
	for i, ft := range f.Templates {
		if strings.TrimSpace(ft.Response) == "" {
			return nil, fmt.Errorf("template %d: response is required", i)
		}
		keywords := make([]string, 0, len(ft.Keywords))
		for _, k := range ft.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("template %d: at least one keyword is required", i)
		}
		game := types.GameContext(strings.TrimSpace(ft.Game))
		active := true
		if ft.Active != nil {
			active = *ft.Active
		}
		out = append(out, types.ResponseTemplate{
			ID:       uuid.New(),
			Game:     ContextOf(game),
			Keywords: keywords,
			Response: ft.Response,
			Priority: ft.Priority,
			Position: i,
			Active:   active,
		})
	}
	return out, nil
}
