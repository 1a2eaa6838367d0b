package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

// Entry is a single named value inside a table group.
// A value is either a scalar string or an ordered list of strings.
type Entry struct {
	Name   string
	Group  string
	Value  string
	List   []string
	IsList bool
}

// Group is an ordered collection of entries under one heading.
type Group struct {
	Name    string
	Entries []Entry
}

// Table is a two-level keyed table (group -> {name -> value}) loaded from YAML.
// Groups and entries keep the order in which they appear in the source document.
type Table struct {
	Source string
	Groups []Group
}

// LoadTable reads and parses a name table from a YAML file.
// It does not check names for uniqueness; call CheckUniqueness for that.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error("config", err, "reading table %s", path)
		return nil, fmt.Errorf("error reading table file: %w", err)
	}

	return ParseTable(data, path)
}

// ParseTable parses YAML table data. source is only used in messages.
func ParseTable(data []byte, source string) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logging.Error("config", err, "parsing table %s", source)
		return nil, fmt.Errorf("error parsing table %s: %w", source, err)
	}

	table := &Table{Source: source}

	// Empty document
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return table, nil
	}

	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("table %s: root must be a mapping of groups", source)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		groupName := root.Content[i].Value
		groupNode := resolveAlias(root.Content[i+1])

		group := Group{Name: groupName}

		switch {
		case isNull(groupNode):
			// "group:" with no entries
		case groupNode.Kind == yaml.MappingNode:
			for j := 0; j+1 < len(groupNode.Content); j += 2 {
				entry, err := parseEntry(groupName, groupNode.Content[j].Value, resolveAlias(groupNode.Content[j+1]))
				if err != nil {
					return nil, fmt.Errorf("table %s: %w", source, err)
				}
				group.Entries = append(group.Entries, entry)
			}
		default:
			return nil, fmt.Errorf("table %s: group %q must be a mapping", source, groupName)
		}

		table.Groups = append(table.Groups, group)
	}

	logging.Debug("config", "loaded table %s with %d groups", source, len(table.Groups))
	return table, nil
}

func parseEntry(group, name string, node *yaml.Node) (Entry, error) {
	entry := Entry{Name: name, Group: group}

	switch node.Kind {
	case yaml.ScalarNode:
		if !isNull(node) {
			entry.Value = node.Value
		}
	case yaml.SequenceNode:
		entry.IsList = true
		entry.List = make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return Entry{}, fmt.Errorf("entry %s.%s: list items must be scalars", group, name)
			}
			entry.List = append(entry.List, item.Value)
		}
	default:
		return Entry{}, fmt.Errorf("entry %s.%s: value must be a string or a list of strings", group, name)
	}

	return entry, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// lookup scans groups in definition order and returns the first entry named name.
func (t *Table) lookup(name string) (Entry, bool) {
	for _, group := range t.Groups {
		for _, entry := range group.Entries {
			if entry.Name == name {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// Find returns the first entry named name, scalar or list.
func (t *Table) Find(name string) (Entry, bool) {
	return t.lookup(name)
}

// Lookup returns the scalar stored under name without logging a miss, for
// optional entries.
func (t *Table) Lookup(name string) (string, bool) {
	entry, ok := t.lookup(name)
	if !ok || entry.IsList {
		return "", false
	}
	return entry.Value, true
}

// Resolve returns the scalar value stored under name.
func (t *Table) Resolve(name string) (string, error) {
	entry, ok := t.lookup(name)
	if !ok {
		err := &NotFoundError{Name: name, Source: t.Source}
		logging.Error("config", err, "resolving %q", name)
		return "", err
	}
	if entry.IsList {
		err := &ShapeError{Name: name, Source: t.Source, Want: "scalar"}
		logging.Error("config", err, "resolving %q", name)
		return "", err
	}
	return entry.Value, nil
}

// ResolveBatch returns the list value stored under name.
func (t *Table) ResolveBatch(name string) ([]string, error) {
	entry, ok := t.lookup(name)
	if !ok {
		err := &NotFoundError{Name: name, Source: t.Source}
		logging.Error("config", err, "resolving batch %q", name)
		return nil, err
	}
	if !entry.IsList {
		err := &ShapeError{Name: name, Source: t.Source, Want: "list"}
		logging.Error("config", err, "resolving batch %q", name)
		return nil, err
	}

	out := make([]string, len(entry.List))
	copy(out, entry.List)
	return out, nil
}

// Names returns every entry name in definition order, duplicates included.
func (t *Table) Names() []string {
	var names []string
	for _, group := range t.Groups {
		for _, entry := range group.Entries {
			names = append(names, entry.Name)
		}
	}
	return names
}

// Len returns the total number of entries across all groups.
func (t *Table) Len() int {
	n := 0
	for _, group := range t.Groups {
		n += len(group.Entries)
	}
	return n
}

// CheckUniqueness fails with a DuplicateKeyError on the first entry name
// that appears twice anywhere in the table, across all groups.
func CheckUniqueness(t *Table) error {
	seen := make(map[string]struct{}, t.Len())
	for _, group := range t.Groups {
		for _, entry := range group.Entries {
			if _, dup := seen[entry.Name]; dup {
				err := &DuplicateKeyError{Name: entry.Name, Group: group.Name, Source: t.Source}
				logging.Error("config", err, "uniqueness check failed")
				return err
			}
			seen[entry.Name] = struct{}{}
		}
	}
	return nil
}

// CheckFileUniqueness loads the table at path and runs CheckUniqueness on it.
func CheckFileUniqueness(path string) error {
	table, err := LoadTable(path)
	if err != nil {
		return fmt.Errorf("error checking uniqueness in %s: %w", path, err)
	}
	return CheckUniqueness(table)
}

// LoadCheckedTable loads a table and verifies it before handing it out.
func LoadCheckedTable(path string) (*Table, error) {
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	if err := CheckUniqueness(table); err != nil {
		return nil, err
	}
	return table, nil
}
