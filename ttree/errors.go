package ttree

import "errors"

// ShapeError reports an extend batch whose per-row shape does not match its
// branch's declared shape.
var ShapeError = errors.New("ttree: shape error")

// NameError reports a branch name missing from, or unexpected in, an
// extend batch.
var NameError = errors.New("ttree: name error")

// IOError wraps a failure propagated from the Sink.
var IOError = errors.New("ttree: io error")
