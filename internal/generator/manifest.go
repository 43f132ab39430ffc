package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const manifestFileName = "routes.json"

// routeManifest maps every emitted route to the component type serving it.
// JSON object keys marshal in sorted order, which keeps the file diffable.
type routeManifest struct {
	Routes map[string]string `json:"routes"`
}

func (s *service) writeManifest(outcomes []documentResult) error {
	manifest := routeManifest{Routes: map[string]string{}}
	for _, outcome := range outcomes {
		if outcome.state != StateEmitted {
			continue
		}
		for _, route := range outcome.component.Routes {
			if existing, ok := manifest.Routes[route]; ok && existing != outcome.component.TypeName {
				s.log.Warn("route claimed by multiple components",
					"route", route,
					"kept", existing,
					"ignored", outcome.component.TypeName,
				)
				continue
			}
			manifest.Routes[route] = outcome.component.TypeName
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("generator: marshal route manifest: %w", err)
	}
	data = append(data, '\n')

	target := filepath.Join(s.cfg.OutputDir, manifestFileName)
	if err := ensureDir(map[string]struct{}{}, filepath.Dir(target)); err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("generator: write route manifest: %w", err)
	}
	s.log.Debug("route manifest written", "path", target, "routes", len(manifest.Routes))
	return nil
}
