package domain

import "errors"

var (
	// Configuration errors.
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknownCharset    = errors.New("unknown charset")
	ErrUnknownStrategy   = errors.New("unknown repair strategy")
	ErrInvalidDictionary = errors.New("invalid repair dictionary")

	// Run errors.
	ErrRootNotFound      = errors.New("target directory not found")
	ErrBackupDirUnusable = errors.New("backup directory cannot be created")
	ErrNoVerifiedBackup  = errors.New("no verified backup")
	ErrUnresolvedCharset = errors.New("actual encoding could not be resolved")
	ErrLossyDecode       = errors.New("decoding would introduce replacement characters")

	// ErrManualAttention is returned by commands when any file still needs
	// a human after the run, so CI can gate on the exit code.
	ErrManualAttention = errors.New("files need manual attention")
)
