package config

import "errors"

var (
	errMissingAddr           = errors.New("config: listen address is required")
	errMissingVerifierPath   = errors.New("config: verifier db path is required")
	errMissingSaveDir        = errors.New("config: post save directory is required")
	errInvalidSnapshotPeriod = errors.New("config: snapshot period must be positive")
)
