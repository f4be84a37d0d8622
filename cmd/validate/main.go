package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/npc-engine/pkg/roster"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <roster.yaml|roster.toml>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &RosterValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type RosterValidator struct {
	errors []string
}

func (v *RosterValidator) validateFile(filename string) error {
	baseName := filepath.Base(filename)
	format, err := roster.FormatFromPath(baseName)
	if err != nil {
		return err
	}

	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidFilename(nameWithoutExt) {
		return fmt.Errorf("roster filename '%s' must be lowercase snake_case (e.g., harbor_town.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	spec, err := decodeStrict(data, format)
	if err != nil {
		return fmt.Errorf("file %s failed strict unmarshaling: %w", filename, err)
	}

	v.errors = nil
	if err := spec.Validate(); err != nil {
		v.addError(err.Error())
	}
	v.validateRoster(&spec)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// decodeStrict rejects keys the roster schema does not know.
func decodeStrict(data []byte, format roster.Format) (roster.Spec, error) {
	var spec roster.Spec
	switch format {
	case roster.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return roster.Spec{}, err
		}
	case roster.FormatTOML:
		md, err := toml.Decode(string(data), &spec)
		if err != nil {
			return roster.Spec{}, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return roster.Spec{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	return spec, nil
}

func (v *RosterValidator) validateRoster(spec *roster.Spec) {
	for i, npc := range spec.NPCs {
		label := fmt.Sprintf("npcs[%d] (%q)", i, npc.Name)

		// a colon in the name defeats "<name>: message" addressing
		if strings.Contains(npc.Name, ":") {
			v.addError(label + " name must not contain ':'")
		}
		if strings.TrimSpace(npc.Persona) == "" {
			v.addError(label + " has no persona")
		}
		if npc.Position.X < 0 || npc.Position.Y < 0 {
			v.addError(fmt.Sprintf("%s position %s is off the grid", label, npc.Position))
		}
	}

	if spec.Player.Position.X < 0 || spec.Player.Position.Y < 0 {
		v.addError(fmt.Sprintf("player position %s is off the grid", spec.Player.Position))
	}
}

func (v *RosterValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidFilename(name string) bool {
	return validFilenameRegex.MatchString(name)
}
