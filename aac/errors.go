package aac

import "errors"

// ErrNoADTSFrames is returned when a stream recognized as ADTS framing
// yields zero valid frames before the syncword check fails or end of file
// is reached.
var ErrNoADTSFrames = errors.New("aac: no valid ADTS frames found")

// ErrNotRecognized reports leading bytes that are not ADIF, ADTS, or MP4.
// Recognize does not return it: it reports that case as HeaderUnknown with
// a nil error.
var ErrNotRecognized = errors.New("aac: stream header not recognized")
