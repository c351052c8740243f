// Package apikey provides a Fiber middleware that checks the X-API-Key header
// against an argon2id hash.
package apikey
