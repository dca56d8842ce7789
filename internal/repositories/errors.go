package repositories

import "errors"

// ErrNotFound is returned by repositories when a requested record does not
// exist. Implementations translate their backend-specific sentinel
// (gorm.ErrRecordNotFound, mongo.ErrNoDocuments) to this error.
var ErrNotFound = errors.New("record not found")
