package output

import (
	"encoding/json"
	"io"

	"github.com/orrery-cli/orrery/internal/model"
)

// JSONFormatter emits the scene in the shape the rendering layer
// consumes: an ordered object list plus aggregate stats.
type JSONFormatter struct {
	Pretty bool
}

// sceneDocument is the wire shape handed to a renderer.
type sceneDocument struct {
	User      string              `json:"user,omitempty"`
	Snapshot  snapshotDocument    `json:"snapshot"`
	SunRadius float64             `json:"sunRadius"`
	Objects   []model.SceneObject `json:"objects"`
	Stats     model.SceneStats    `json:"stats"`
	RateLimit model.RateLimit     `json:"rateLimit"`
}

type snapshotDocument struct {
	Year int    `json:"year"`
	Mode string `json:"mode"`
}

// Format outputs the scene as JSON.
func (f *JSONFormatter) Format(scene *model.Scene, w io.Writer) error {
	doc := sceneDocument{
		Snapshot: snapshotDocument{
			Year: scene.Snapshot.Year(),
			Mode: string(scene.Snapshot.Mode),
		},
		SunRadius: scene.SunRadius,
		Objects:   scene.Objects,
		Stats:     scene.Stats,
		RateLimit: scene.RateLimit,
	}
	if len(scene.Objects) > 0 {
		doc.User = scene.Objects[0].Record.Owner
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(doc)
}
