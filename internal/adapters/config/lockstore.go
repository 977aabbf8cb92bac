package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileLockStore implements ports.LockStore on keel-lock.yaml.
type FileLockStore struct{}

// NewLockStore creates a FileLockStore.
func NewLockStore() *FileLockStore {
	return &FileLockStore{}
}

// Save writes the lock file for dir. The document is built as an
// explicit node tree so keys come out in a stable order: spec names
// alphabetically, platform-group keys in canonical order with pip
// last. A plain map marshal would not give us that.
func (s *FileLockStore) Save(dir string, lockSets map[string]*domain.LockSet) error {
	specNames := make([]string, 0, len(lockSets))
	for name := range lockSets {
		specNames = append(specNames, name)
	}
	sort.Strings(specNames)

	specsNode := mappingNode()
	for _, name := range specNames {
		appendEntry(specsNode, name, lockSetNode(lockSets[name]))
	}

	root := mappingNode()
	appendEntry(root, "locking_enabled", boolNode(true))
	appendEntry(root, "env_specs", specsNode)

	data, err := yaml.Marshal(root)
	if err != nil {
		return zerr.Wrap(err, "failed to render lock file")
	}
	path := filepath.Join(dir, LockFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // lock files are project artifacts
		return zerr.Wrap(err, "failed to write lock file")
	}
	return nil
}

func lockSetNode(lockSet *domain.LockSet) *yaml.Node {
	node := mappingNode()
	appendEntry(node, "locked", boolNode(lockSet.Enabled()))
	if hash := lockSet.EnvSpecHash(); hash != "" {
		appendEntry(node, "env_spec_hash", scalarNode(hash))
	}
	appendEntry(node, "platforms", sequenceNode(lockSet.Platforms()))

	packages := mappingNode()
	byGroup := lockSet.PackagesByGroup()
	for _, group := range lockSet.GroupKeys() {
		appendEntry(packages, group, sequenceNode(byGroup[group]))
	}
	appendEntry(node, "packages", packages)
	return node
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func boolNode(value bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)}
}

func sequenceNode(values []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, value := range values {
		node.Content = append(node.Content, scalarNode(value))
	}
	return node
}

func appendEntry(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, scalarNode(key), value)
}
