package presentation

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var labelsYAML []byte

type kindText struct {
	Message string `yaml:"message"`
	Action  Action `yaml:"action"`
}

type catalog struct {
	Fields map[string]string   `yaml:"fields"`
	Kinds  map[string]kindText `yaml:"kinds"`
}

var loadCatalog = sync.OnceValue(func() catalog {
	var c catalog
	if err := yaml.Unmarshal(labelsYAML, &c); err != nil {
		panic(fmt.Sprintf("presentation: invalid labels.yaml: %v", err))
	}
	return c
})

// FieldLabel renders an error path for users. Indexed paths are prefixed
// with the 1-based item number: "vehicles -> 0 -> make" -> "Vehicle 1: Vehicle Make".
func FieldLabel(path string) string {
	if path == "" {
		return "Unknown field"
	}
	parts := strings.Split(path, " -> ")
	last := parts[len(parts)-1]

	label, ok := loadCatalog().Fields[last]
	if !ok {
		label = last
	}

	if len(parts) >= 3 && parts[0] == "vehicles" {
		var idx int
		if _, err := fmt.Sscanf(parts[1], "%d", &idx); err == nil {
			return fmt.Sprintf("Vehicle %d: %s", idx+1, label)
		}
	}
	return label
}

func kindCopy(code string) kindText {
	c := loadCatalog()
	if text, ok := c.Kinds[code]; ok {
		return text
	}
	return c.Kinds["UNKNOWN_ERROR"]
}
