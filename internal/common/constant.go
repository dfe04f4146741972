// Package common contains shared constants and sentinel errors used across
// foodlog components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// TempIDPrefix marks identifiers allocated on a device before the server has
// issued its own id. The server never issues ids with this prefix.
const TempIDPrefix = "tmp_"
