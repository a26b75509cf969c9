package database

import (
	"errors"
	"fmt"
)

// ConnectionError means the database could not be reached or refused the
// credentials. Nothing was queried.
type ConnectionError struct {
	Strategy string
	Target   string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect via %s to %s: %v", e.Strategy, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UserMessage is the summarized text shown in the dashboard.
func (e *ConnectionError) UserMessage() string {
	return fmt.Sprintf("Could not connect to the inventory database (%s). Check the server, credentials and network, then use Test connection.", e.Target)
}

// QueryError means the connection succeeded but running or reading the
// inventory query failed.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("inventory cost query: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) UserMessage() string {
	return "Connected to the database, but the inventory query failed. Details were logged on the server."
}

// Kind is the presentation state an error maps to.
type Kind string

const (
	KindConnection Kind = "connection_error"
	KindQuery      Kind = "query_error"
	KindOther      Kind = "error"
)

// Classify maps an error returned by Source to its kind and user message.
func Classify(err error) (Kind, string) {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return KindConnection, connErr.UserMessage()
	}
	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return KindQuery, queryErr.UserMessage()
	}
	return KindOther, "Loading inventory data failed. Details were logged on the server."
}
