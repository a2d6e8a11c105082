// Package apperr porte la taxonomie d'erreurs métier : un seul type taggé
// avec un kind et un statut HTTP, à la place d'une hiérarchie de classes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindBadRequest:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Err conserve la cause d'origine pour les logs, jamais pour le client
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New construit une erreur du kind donné avec son statut HTTP associé
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Status: statusByKind[kind], Message: message}
}

func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }

// Internal enveloppe une erreur inattendue derrière un message générique
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "Erreur interne du serveur",
		Err:     err,
	}
}

// From retourne l'erreur telle quelle si c'est déjà une *Error,
// sinon l'enveloppe en erreur interne
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
