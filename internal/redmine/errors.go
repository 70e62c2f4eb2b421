package redmine

import "errors"

var (
	// ErrUnauthorized indica token inválido o sin permisos.
	ErrUnauthorized = errors.New("redmine: unauthorized")
	// ErrNotFound indica que el recurso no existe o no es visible.
	ErrNotFound = errors.New("redmine: not found")
)
