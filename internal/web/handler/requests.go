package handler

import "github.com/GoRADIUS-Admin/GoRADIUS-Admin/internal/radius"

// AttributeRequest addresses one attribute of a given kind.
type AttributeRequest struct {
	Kind radius.Kind `json:"kind"`
	radius.Attribute
}

// UpdateAttributeRequest replaces Old with New.
type UpdateAttributeRequest struct {
	Kind radius.Kind      `json:"kind"`
	Old  radius.Attribute `json:"old"`
	New  radius.Attribute `json:"new"`
}
