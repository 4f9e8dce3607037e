// Package api provides the booking platform's HTTP surface: the OAuth
// authorization and token endpoints, the credential administration API,
// and the operational endpoints.
package api
