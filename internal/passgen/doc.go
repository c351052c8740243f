// Package passgen generates random RADIUS passwords from crypto/rand.
package passgen
