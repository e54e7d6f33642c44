package filing

import (
	"errors"
	"fmt"

	"github.com/dgallion1/ncparse/internal/sgml"
)

// ErrUnrecoverable matches every MappingError.
var ErrUnrecoverable = errors.New("structurally unrecoverable filing")

// MappingError reports a required structural element missing from the tree.
type MappingError struct {
	Element string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map filing: no %s found", e.Element)
}

func (e *MappingError) Is(target error) bool {
	return target == ErrUnrecoverable
}

// Anomalies recorded while mapping, in addition to the tree builder's.
const (
	AnomalyMissingEnvelope     sgml.AnomalyKind = "missing-envelope"
	AnomalyOutsideEnvelope     sgml.AnomalyKind = "outside-envelope"
	AnomalyUnknownField        sgml.AnomalyKind = "unknown-field"
	AnomalyUnknownBlock        sgml.AnomalyKind = "unknown-block"
	AnomalyDuplicateField      sgml.AnomalyKind = "duplicate-field"
	AnomalyBadDate             sgml.AnomalyKind = "bad-date"
	AnomalyBadValue            sgml.AnomalyKind = "bad-value"
	AnomalyMissingPayload      sgml.AnomalyKind = "missing-payload"
	AnomalyExtraPayload        sgml.AnomalyKind = "extra-payload"
	AnomalyUnclassifiedPayload sgml.AnomalyKind = "unclassified-payload"
)
