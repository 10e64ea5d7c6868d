package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindRouteUnavailable ErrorKind = "route_unavailable"
	KindCatalogLoad      ErrorKind = "catalog_load"
	KindInvalidTripInput ErrorKind = "invalid_trip_input"
	KindConfiguration    ErrorKind = "configuration"
)

// TripError is a classified failure. Field names the offending input, if any.
type TripError struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *TripError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TripError) Unwrap() error { return e.Err }

func RouteUnavailable(err error) *TripError {
	return &TripError{Kind: KindRouteUnavailable, Err: err}
}

func CatalogLoad(err error) *TripError {
	return &TripError{Kind: KindCatalogLoad, Err: err}
}

func InvalidInput(field string, err error) *TripError {
	return &TripError{Kind: KindInvalidTripInput, Field: field, Err: err}
}

func Configuration(field string, err error) *TripError {
	return &TripError{Kind: KindConfiguration, Field: field, Err: err}
}

// AsTripError classifies err, defaulting unknown failures to fallback.
func AsTripError(err error, fallback ErrorKind) *TripError {
	var te *TripError
	if errors.As(err, &te) {
		return te
	}
	return &TripError{Kind: fallback, Err: err}
}

// IsKind reports whether err is a TripError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TripError
	return errors.As(err, &te) && te.Kind == kind
}
