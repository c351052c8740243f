// Package main is the entry point of radius-admin, a tool for managing the
// users, groups and attributes of a FreeRADIUS SQL database from the command
// line or through a JSON REST API.
package main
