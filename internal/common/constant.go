package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RefreshTokenSize is the number of random bytes in an opaque refresh token.
const RefreshTokenSize = 32

// VerificationTokenSize is the number of random bytes in an email verification token.
const VerificationTokenSize = 16
