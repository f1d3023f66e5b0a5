// Package server serves translations over HTTP with gin.
//
// A [Handler] negotiates the locale of each request from its Accept-Language
// header and keeps one translator per locale, sharing a single parse cache.
// [Handler.Middleware] stores the translator on the gin context for other
// handlers ([FromContext]); [Handler.Register] adds JSON endpoints that list
// the locales and render a key.
package server
