package domain

import "errors"

var (
	ErrCapabilityMissing       = errors.New("motion sensor not supported")
	ErrPermissionDenied        = errors.New("motion permission denied")
	ErrPermissionRequestFailed = errors.New("motion permission request failed")
	ErrPermissionPending       = errors.New("motion permission request already pending")
	ErrStartDisabled           = errors.New("tracking is disabled for this session")
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrKeyNotFound             = errors.New("key not found")
)
