package fielddefs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel/starfield/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadFromDir reads every *.yaml and *.yml file in dirPath. Files that fail to
// parse or validate are reported together in the returned error; the valid
// ones are still returned. A missing directory loads nothing.
func LoadFromDir(dirPath string) ([]Definition, error) {
	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read field definitions dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	loaded := make([]Definition, 0, len(files))
	seen := make(map[string]string, len(files))
	var errs []error

	for _, filePath := range files {
		definition, err := loadFile(filePath)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(filePath), err))
			continue
		}
		if previous, exists := seen[definition.Handle]; exists {
			errs = append(errs, fmt.Errorf("%s: handle %q already defined in %s", filepath.Base(filePath), definition.Handle, previous))
			continue
		}
		seen[definition.Handle] = filepath.Base(filePath)
		loaded = append(loaded, definition)
	}

	if len(errs) > 0 {
		return loaded, fmt.Errorf("field definitions failed to load: %w", errors.Join(errs...))
	}

	return loaded, nil
}

func loadFile(filePath string) (Definition, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Definition{}, err
	}

	var definition Definition
	if err := yaml.Unmarshal(content, &definition); err != nil {
		return Definition{}, err
	}
	if err := definition.NormalizeAndValidate(); err != nil {
		return Definition{}, err
	}
	return definition, nil
}

type fieldUpserter interface {
	Upsert(field models.Field) (*models.Field, error)
}

// Sync writes definitions into the field store and returns how many were saved.
func Sync(repo fieldUpserter, definitions []Definition, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	saved := 0
	var errs []error
	for _, definition := range definitions {
		field, err := repo.Upsert(definition.Field())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
		logger.Debug("field definition synced", "handle", field.Handle, "maxStars", field.MaxStars)
	}

	return saved, errors.Join(errs...)
}
