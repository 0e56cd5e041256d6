package model

import "errors"

// ErrSymbolNotFound is returned by SymbolResolver implementations when no
// catalog row matches both symbol and exchange. It must surface as a
// validation failure, never as a silent default.
var ErrSymbolNotFound = errors.New("symbol not found in catalog")

// ErrNoCredentials is returned by CredentialProvider implementations when
// the user has no live broker session.
var ErrNoCredentials = errors.New("no broker session for user")
