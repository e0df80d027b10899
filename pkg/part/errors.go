package part

import "errors"

// Sentinel errors returned by the feature-history engine. All of them are
// precondition failures raised before any state changes; match with
// errors.Is.
var (
	// ErrUnknownOperation: the operation name is not registered for the
	// current shape's feature kind.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrTypeMismatch: the feature's input geometry does not match the
	// feature kind accepted by the part's current shape.
	ErrTypeMismatch = errors.New("feature kind does not match part geometry")

	// ErrUnassociated: Restore was called on a feature that was never
	// applied to a part.
	ErrUnassociated = errors.New("feature is not associated with any part")

	// ErrFeatureNotFound: none of the features passed to ClearFeatures
	// are present in the part's feature list.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrEmptyHistory: ReplayAllFeatures was called with no features.
	ErrEmptyHistory = errors.New("no features to replay")

	// ErrNoResult: the operation kernel returned no usable geometry.
	ErrNoResult = errors.New("operation produced no result")
)
