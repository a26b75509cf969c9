//go:build odbc

package database

// The ODBC driver needs cgo and unixODBC (or the Windows ODBC manager), so it
// is only registered in builds tagged "odbc". Other builds report the missing
// driver as a connection error.
import _ "github.com/alexbrainman/odbc"
