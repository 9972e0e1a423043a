package database

import "errors"

var ErrNotFound = errors.New("file record not found")
