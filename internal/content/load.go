package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDirectory reads a content tree into a Store.  Each definition kind
// lives in its own subdirectory (conditions/, items/, spells/, features/,
// classes/, creatures/, resources/, skills/, damage_types/), one YAML file
// per definition.  Missing subdirectories are fine; unknown YAML fields are
// not.
// Postcondition: returns a populated Store, or an error naming the first
// file that failed to parse.
func LoadDirectory(root string) (*Store, error) {
	store := NewStore()
	loaders := []struct {
		subdir string
		decode func(path string, data []byte) error
	}{
		{"conditions", kindLoader(store.RegisterCondition)},
		{"items", kindLoader(store.RegisterItem)},
		{"spells", kindLoader(store.RegisterSpell)},
		{"features", kindLoader(store.RegisterFeature)},
		{"classes", kindLoader(store.RegisterClass)},
		{"creatures", kindLoader(store.RegisterCreature)},
		{"resources", kindLoader(store.RegisterResource)},
		{"skills", kindLoader(store.RegisterSkill)},
		{"damage_types", kindLoader(store.RegisterDamageType)},
	}
	for _, l := range loaders {
		dir := filepath.Join(root, l.subdir)
		if err := loadKind(dir, l.decode); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// kindLoader builds a strict-decode-and-register function for one
// definition type.
func kindLoader[T any](register func(*T)) func(string, []byte) error {
	return func(path string, data []byte) error {
		var def T
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		register(&def)
		return nil
	}
}

func loadKind(dir string, decode func(string, []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := decode(path, data); err != nil {
			return err
		}
	}
	return nil
}
