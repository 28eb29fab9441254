package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFixture reads a file relative to the calling package's testdata dir.
func LoadFixture(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join("testdata", name))
}

// LoadGolden decodes a JSON golden file from testdata into v.
func LoadGolden(name string, v any) error {
	data, err := LoadFixture(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode golden %s: %w", name, err)
	}
	return nil
}
