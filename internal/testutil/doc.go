// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing core model objects (candidates,
// workflow contexts) and scripting model responses. These helpers are
// intentionally minimal and not intended for production usage.
package testutil
