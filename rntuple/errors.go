package rntuple

import "errors"

// Sentinel error kinds. Call sites wrap these with
// fmt.Errorf("...: %w", FormatError) so callers can errors.Is on the kind.
var (
	// FormatError signals an envelope/frame structural violation, a CRC
	// mismatch, or an unsupported column arity.
	FormatError = errors.New("rntuple: format error")

	// UnsupportedFeature signals memberwise serialization, a non-disk
	// locator, or another feature this reader deliberately doesn't support.
	UnsupportedFeature = errors.New("rntuple: unsupported feature")
)
