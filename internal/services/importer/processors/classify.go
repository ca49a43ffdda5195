package processors

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/utils"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// CategoryRule maps a keyword set and a type-code set to one category. Either
// set may be empty.
type CategoryRule struct {
	Category  models.Category `yaml:"category"`
	Keywords  []string        `yaml:"keywords"`
	TypeCodes []string        `yaml:"type_codes"`
}

// Rules is the ordered classification table. The zero value classifies
// everything as registered, ordinary and inactive.
type Rules struct {
	Categories     []CategoryRule `yaml:"categories"`
	SpecialRegime  []string       `yaml:"special_regime_keywords"`
	ActiveStatuses []string       `yaml:"active_statuses"`
}

func DefaultRules() *Rules {
	r, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic("processors: embedded rules.yaml: " + err.Error())
	}
	return r
}

// LoadRules reads a rule file. An empty path yields the embedded defaults.
func LoadRules(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	r, err := ParseRules(b)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

func ParseRules(b []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	for i := range r.Categories {
		c := &r.Categories[i]
		if !c.Category.Valid() {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, c.Category)
		}
		c.Keywords = foldAll(c.Keywords)
		c.TypeCodes = foldAll(c.TypeCodes)
	}
	r.SpecialRegime = foldAll(r.SpecialRegime)
	r.ActiveStatuses = foldAll(r.ActiveStatuses)
	return &r, nil
}

// Classify walks the category rules in order. A rule matches when the legal
// name contains one of its keywords as whole words, or when the type code
// equals one of its codes.
func (r *Rules) Classify(legalName, typeCode string) models.Category {
	name := " " + utils.FoldKey(legalName) + " "
	code := utils.FoldKey(typeCode)
	for _, rule := range r.Categories {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, " "+kw+" ") {
				return rule.Category
			}
		}
		if code == "" {
			continue
		}
		for _, tc := range rule.TypeCodes {
			if code == tc {
				return rule.Category
			}
		}
	}
	return models.CategoryRegistered
}

func (r *Rules) Regime(activity, typeCode string) models.Regime {
	text := " " + utils.FoldKey(activity+" "+typeCode) + " "
	for _, kw := range r.SpecialRegime {
		if strings.Contains(text, " "+kw+" ") {
			return models.RegimeSpecial
		}
	}
	return models.RegimeOrdinary
}

func (r *Rules) Status(text string) models.Status {
	s := utils.FoldKey(text)
	for _, a := range r.ActiveStatuses {
		if s == a {
			return models.StatusActive
		}
	}
	return models.StatusInactive
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := utils.FoldKey(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}
