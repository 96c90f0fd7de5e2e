package confdoc

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the namespace's current values under basePath into
// target, which must be a non-nil pointer to a struct or map. Field
// mapping uses the "toml" tag. An empty basePath decodes the whole
// namespace; a dotted basePath navigates into table values.
func (n *Namespace) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}

	tree := make(map[string]any, len(n.names))
	for _, name := range n.names {
		tree[name] = n.vars[name].value
	}

	section := navigateToPath(tree, basePath)
	sectionMap, ok := section.(map[string]any)
	if !ok {
		if section == nil {
			sectionMap = make(map[string]any)
		} else {
			return fmt.Errorf("path %q refers to a non-table value (type %T)", basePath, section)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("failed to scan section %q into %T: %w", basePath, target, err)
	}
	return nil
}

// navigateToPath traverses nested tables to reach the value at a
// dotted path. Returns nil when the path does not exist.
func navigateToPath(tree map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return tree
	}

	current := any(tree)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}
	return current
}
