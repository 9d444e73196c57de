// Package gateway wraps the two remote HTTP APIs the client talks to.
//
// # Overview
//
//  1. Client is the shared transport: base URL, *http.Client, request ids,
//     JSON encoding and failure normalisation.
//  2. Backend covers the account API (/auth/*, /users, /favourites).
//     Endpoints that need a bearer credential ask an Authorizer to decorate
//     the request; the session store is the only production Authorizer.
//  3. Countries covers the public countries dataset (/all, /name, /region,
//     /lang, /alpha, /independent).
//
// # Error Handling
//
// Every failure is returned as *Error carrying a Kind (network, validation,
// auth, not_found, unknown) and a display message taken from the response
// body when the server provides one. Callers discriminate with errors.Is
// against ErrUnavailable, ErrUnauthorized, ErrNotFound and ErrValidation, or
// with KindOf. MessageOf extracts the string meant for the user.
package gateway
