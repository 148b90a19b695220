package convert

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coderbot16/cemconv/pkg/cem"
	"github.com/coderbot16/cemconv/pkg/dom"
	"github.com/coderbot16/cemconv/pkg/formats"
)

// COLLADA import errors.
var (
	ErrNoScene         = errors.New("collada document has no scene reference")
	ErrSceneNotFound   = errors.New("referenced visual scene does not exist")
	ErrMissingGeometry = errors.New("geometry library missing a referenced geometry")
)

// ColladaToModel converts a COLLADA document into a flat model. The
// scene's root geometry becomes the base frame; morph targets linked
// through the controllers library become additional frames after their
// topology is proven identical to the base's.
func ColladaToModel(doc *formats.ColladaDocument, log *zap.Logger) (*cem.Model, error) {
	rootID, err := findRootGeometry(doc.Root, log)
	if err != nil {
		return nil, err
	}

	base, ok := doc.Objects[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingGeometry, rootID)
	}

	var targets []*formats.Object
	if link, ok := doc.Links[rootID]; ok {
		if link.Method == "RELATIVE" {
			log.Warn("unsupported morph method RELATIVE, treating it as NORMALIZED")
		}
		targets = make([]*formats.Object, len(link.Targets))
		for i, name := range link.Targets {
			target, ok := doc.Objects[name]
			if !ok {
				return nil, fmt.Errorf("%w: morph target %q", ErrMissingGeometry, name)
			}
			targets[i] = target
		}
	}

	if err := validateTopology(base, targets); err != nil {
		return nil, err
	}

	// One dedup pass against the base decides the flat index
	// assignment for every frame.
	dedup := newDeduplicator(base)
	triangles := collectTriangles(base, dedup)
	triples := dedup.triples()

	log.Debug("flattened collada geometry",
		zap.Int("triangles", len(triangles)),
		zap.Int("flat_vertices", len(triples)),
		zap.Int("positions", len(base.Positions)),
		zap.Int("texcoords", len(base.TexCoords)),
		zap.Int("normals", len(base.Normals)))

	frames := make([]cem.Frame, 0, 1+len(targets))
	frames = append(frames, materializeFrame(base, triples, colladaGrammar))
	for _, target := range targets {
		frames = append(frames, materializeFrame(target, triples, colladaGrammar))
	}

	return assembleModel(triangles, frames), nil
}

// findRootGeometry resolves the document's scene reference and scans
// the named visual scene for geometry instantiation. Unsupported node
// content is reported and skipped; only a missing root is fatal.
func findRootGeometry(root *dom.Node, log *zap.Logger) (string, error) {
	scene := root.Child("scene")
	if scene == nil {
		return "", ErrNoScene
	}
	instance := scene.Child("instance_visual_scene")
	if instance == nil {
		return "", ErrNoScene
	}
	url, ok := instance.Attr("url")
	if !ok {
		return "", ErrNoScene
	}
	sceneID := formats.TrimHash(url)

	library := root.Child("library_visual_scenes")
	if library == nil {
		return "", fmt.Errorf("%w: %q", ErrSceneNotFound, sceneID)
	}

	var visualScene *dom.Node
	for _, candidate := range library.ChildrenNamed("visual_scene") {
		if id, _ := candidate.Attr("id"); id == sceneID {
			visualScene = candidate
			break
		}
	}
	if visualScene == nil {
		return "", fmt.Errorf("%w: %q", ErrSceneNotFound, sceneID)
	}

	var roots []string
	for _, node := range visualScene.ChildrenNamed("node") {
		if nodeType, _ := node.Attr("type"); nodeType == "JOINT" {
			log.Warn("unsupported node type JOINT, ignoring")
			continue
		}
		roots = append(roots, scanNode(node, log)...)
	}

	if len(roots) == 0 {
		return "", ErrNoRootGeometry
	}
	if len(roots) > 1 {
		log.Warn("ignoring additional root geometry, submodels are not supported",
			zap.Int("dropped", len(roots)-1))
	}
	return roots[0], nil
}

func scanNode(node *dom.Node, log *zap.Logger) []string {
	var roots []string
	for _, element := range node.Children() {
		switch element.Name() {
		case "asset":
		case "lookat", "matrix", "rotate", "scale", "skew", "translate":
			log.Warn("transformations on nodes are not supported",
				zap.String("kind", element.Name()))
		case "instance_camera":
			log.Warn("ignoring instance_camera")
		case "instance_controller":
			log.Warn("ignoring instance_controller")
		case "instance_light":
			log.Warn("lights are unsupported")
		case "instance_node":
			log.Warn("ignoring instance_node")
		case "node":
			log.Warn("nested nodes are unsupported")
		case "instance_geometry":
			url, ok := element.Attr("url")
			if !ok {
				log.Warn("degenerate instance_geometry is missing a url attribute")
				continue
			}
			roots = append(roots, formats.TrimHash(url))
		}
	}
	return roots
}
