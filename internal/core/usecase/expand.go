package usecase

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TermSynonyms maps a question term to the synonyms used for recall-widening
// variants. Order matters: variants are produced in table order.
type TermSynonyms struct {
	Term     string   `yaml:"term"`
	Synonyms []string `yaml:"synonyms"`
}

// PrefixRewrite turns an interrogative prefix into its declarative form.
type PrefixRewrite struct {
	Prefix      string `yaml:"prefix"`
	Replacement string `yaml:"replacement"`
}

// ExpansionTables is the static configuration of the query expander. Tables
// are injected rather than global so tests and deployments can substitute
// their own vocabulary.
type ExpansionTables struct {
	DomainContext string          `yaml:"domain_context"`
	Synonyms      []TermSynonyms  `yaml:"synonyms"`
	Rewrites      []PrefixRewrite `yaml:"rewrites"`
}

// DefaultExpansionTables returns the built-in vocabulary tuned for agent
// platform documentation.
func DefaultExpansionTables() ExpansionTables {
	return ExpansionTables{
		DomainContext: "AI agents",
		Synonyms: []TermSynonyms{
			{Term: "agent", Synonyms: []string{"ai agent", "bot", "assistant", "automation"}},
			{Term: "action", Synonyms: []string{"operation", "task", "function", "capability"}},
			{Term: "runbook", Synonyms: []string{"configuration", "setup", "instructions", "specification"}},
			{Term: "component", Synonyms: []string{"part", "element", "module", "piece"}},
			{Term: "control room", Synonyms: []string{"cr", "control center", "management interface"}},
			{Term: "studio", Synonyms: []string{"development environment", "ide", "workspace"}},
			{Term: "deploy", Synonyms: []string{"publish", "release", "launch", "distribute"}},
			{Term: "monitor", Synonyms: []string{"track", "observe", "watch", "supervise"}},
		},
		Rewrites: []PrefixRewrite{
			{Prefix: "what is", Replacement: "refers to"},
			{Prefix: "what are", Replacement: "includes"},
			{Prefix: "how do", Replacement: "to"},
			{Prefix: "how does", Replacement: "works by"},
			{Prefix: "how can", Replacement: "can be done by"},
			{Prefix: "where", Replacement: "location is"},
			{Prefix: "when", Replacement: "time is"},
			{Prefix: "why", Replacement: "because"},
			{Prefix: "which", Replacement: "the relevant"},
		},
	}
}

// LoadExpansionTablesFile reads tables from a YAML file. An empty path means
// the built-in defaults; missing sections in the file fall back to them too.
func LoadExpansionTablesFile(path string) (ExpansionTables, error) {
	tables := DefaultExpansionTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ExpansionTables{}, fmt.Errorf("read expansion tables: %w", err)
	}

	var loaded ExpansionTables
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return ExpansionTables{}, fmt.Errorf("parse expansion tables: %w", err)
	}

	if loaded.DomainContext != "" {
		tables.DomainContext = loaded.DomainContext
	}
	if len(loaded.Synonyms) > 0 {
		tables.Synonyms = loaded.Synonyms
	}
	if len(loaded.Rewrites) > 0 {
		tables.Rewrites = loaded.Rewrites
	}
	return tables, nil
}

// ExpandQuestion derives the ordered, deduplicated query variants for a
// question: the domain-contextualized form first, then one variant per
// synonym of every term occurring in the question, then the declarative
// rewrite of the first matching interrogative prefix, and finally the
// lowercased original as the fallback. Pure function: no I/O, deterministic.
func ExpandQuestion(tables ExpansionTables, question string) []string {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return nil
	}

	variants := make([]string, 0, 8)
	variants = append(variants, fmt.Sprintf("In the context of %s, %s", tables.DomainContext, q))

	for _, entry := range tables.Synonyms {
		if !strings.Contains(q, entry.Term) {
			continue
		}
		for _, synonym := range entry.Synonyms {
			variants = append(variants, strings.ReplaceAll(q, entry.Term, synonym))
		}
	}

	for _, rewrite := range tables.Rewrites {
		if strings.HasPrefix(q, rewrite.Prefix) {
			statement := strings.Replace(q, rewrite.Prefix, rewrite.Replacement, 1)
			statement = strings.ReplaceAll(statement, "?", "")
			variants = append(variants, statement)
			break
		}
	}

	variants = append(variants, q)
	return dedupeKeepOrder(variants)
}

func dedupeKeepOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
