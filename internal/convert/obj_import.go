package convert

import (
	"errors"

	"go.uber.org/zap"

	"github.com/coderbot16/cemconv/pkg/cem"
	"github.com/coderbot16/cemconv/pkg/formats"
)

// ErrNoRootGeometry means the source document defines no geometry the
// converter could use as a model root.
var ErrNoRootGeometry = errors.New("no root geometry found")

// ObjToModel converts the first object of an OBJ document into a
// single-frame flat model. Additional objects are dropped with a
// warning; the OBJ grammar carries no morph linkage.
func ObjToModel(doc *formats.ObjDocument, log *zap.Logger) (*cem.Model, error) {
	if len(doc.Objects) == 0 {
		return nil, ErrNoRootGeometry
	}
	if len(doc.Objects) > 1 {
		log.Warn("ignoring additional objects, submodels are not supported",
			zap.Int("dropped", len(doc.Objects)-1))
	}

	object := doc.Objects[0]

	dedup := newDeduplicator(object)
	triangles := collectTriangles(object, dedup)

	frame := materializeFrame(object, dedup.triples(), objGrammar)

	log.Debug("flattened obj geometry",
		zap.Int("triangles", len(triangles)),
		zap.Int("flat_vertices", len(dedup.triples())),
		zap.Int("positions", len(object.Positions)),
		zap.Int("texcoords", len(object.TexCoords)),
		zap.Int("normals", len(object.Normals)))

	return assembleModel(triangles, []cem.Frame{frame}), nil
}
